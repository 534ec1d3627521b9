package orchestrator

import "github.com/front-desk-ai/rag-orchestrator/internal/knowledge"

// PlanStep is one structured trace record in a turn's plan_steps list
// (§4.5). Step names are fixed; see the Step* constants. Plan steps
// appended from concurrent branches (the dual-intent subflow) may
// interleave -- the list reflects completion order, not dispatch order.
type PlanStep struct {
	Step              string `json:"step"`
	DetectedSchedule  bool   `json:"detected_schedule,omitempty"`
	DetectedKnowledge bool   `json:"detected_knowledge,omitempty"`
	Detail            string `json:"detail,omitempty"`
	LatencyMS         int64  `json:"latency_ms"`
}

// Fixed plan-step names per §4.5.
const (
	StepIntentDetection       = "intent_detection"
	StepExtractEntities       = "extract_entities"
	StepExtractTime           = "extract_time"
	StepScheduleAppointment   = "schedule_appointment"
	StepRescheduleAppointment = "reschedule_appointment"
	StepRetrieveKnowledge     = "retrieve_knowledge"
)

// ToolResult is the tagged result of a tool invocation (§7(d)): success
// carries the appointment, failure carries an error string -- never a
// panic or bare error value crossing the component boundary.
type ToolResult struct {
	OK          bool        `json:"ok"`
	Error       string      `json:"error,omitempty"`
	Appointment interface{} `json:"appointment,omitempty"`
}

// ToolCall records one tool invocation and its outcome for the
// response envelope's tool_calls list.
type ToolCall struct {
	Name   string     `json:"name"`
	Result ToolResult `json:"result"`
}

// Response is the envelope returned for every chat turn (§4.5 step 5).
type Response struct {
	Reply     string               `json:"reply"`
	Citations []knowledge.Citation `json:"citations"`
	PlanSteps []PlanStep           `json:"plan_steps"`
	ToolCalls []ToolCall           `json:"tool_calls"`
	LatencyMS int64                `json:"latency_ms"`
	Error     string               `json:"error,omitempty"`
}
