// Package orchestrator is the Orchestrator component (§4.5): it reads
// the intent vector, dispatches to the Knowledge path, the Schedule or
// Reschedule subflow, or both in parallel, and composes the response
// envelope. It holds no session state itself -- that lives entirely in
// Session Memory.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/front-desk-ai/rag-orchestrator/internal/answerextract"
	"github.com/front-desk-ai/rag-orchestrator/internal/cachekey"
	"github.com/front-desk-ai/rag-orchestrator/internal/entity"
	"github.com/front-desk-ai/rag-orchestrator/internal/intent"
	"github.com/front-desk-ai/rag-orchestrator/internal/knowledge"
	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
	"github.com/front-desk-ai/rag-orchestrator/internal/schedule"
	"github.com/front-desk-ai/rag-orchestrator/internal/session"
)

// knowledgeCacheTTL is the knowledge: namespace TTL (§4.6).
const knowledgeCacheTTL = 600 * time.Second

// knowledgeCacheEntry is the {reply, citations} value cached under the
// knowledge: namespace, holding the Answer Extractor's final output for
// a given message.
type knowledgeCacheEntry struct {
	Reply     string               `json:"reply"`
	Citations []knowledge.Citation `json:"citations"`
}

// rescheduleRe detects a reschedule request per §4.5 step 3. It only
// fires in combination with a known last_appt -- a bare "move" with no
// prior appointment falls through to the ordinary schedule subflow.
var rescheduleRe = regexp.MustCompile(`(?i)make it|change to|move|reschedule|change the|move it`)

// Orchestrator wires every other component together.
type Orchestrator struct {
	Intent    *intent.Classifier
	Entities  *entity.Extractor
	Knowledge *knowledge.DAO
	Answer    *answerextract.Extractor
	Schedule  *schedule.Interface
	Memory    *session.Memory
	KV        kvstore.Store
	Logger    *zap.Logger
	Clock     func() time.Time
}

func New(
	intentClassifier *intent.Classifier,
	entities *entity.Extractor,
	kb *knowledge.DAO,
	answer *answerextract.Extractor,
	sched *schedule.Interface,
	memory *session.Memory,
	kv kvstore.Store,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Intent:    intentClassifier,
		Entities:  entities,
		Knowledge: kb,
		Answer:    answer,
		Schedule:  sched,
		Memory:    memory,
		KV:        kv,
		Logger:    logger,
		Clock:     time.Now,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func elapsedMS(since time.Time) int64 {
	return time.Since(since).Milliseconds()
}

// planRecorder accumulates plan steps from possibly-concurrent
// branches under a mutex -- §5's ordering note means the caller must
// not assume append order reflects dispatch order.
type planRecorder struct {
	mu    sync.Mutex
	steps []PlanStep
}

func (p *planRecorder) add(step PlanStep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, step)
}

func (p *planRecorder) list() []PlanStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PlanStep, len(p.steps))
	copy(out, p.steps)
	return out
}

// Handle runs one chat turn to completion (§4.5). It never returns an
// error: per §7(e), unexpected failures are caught and folded into the
// response's Error field alongside whatever plan_steps accumulated, so
// clients can still render partial progress.
func (o *Orchestrator) Handle(ctx context.Context, message, sessionID string) (resp Response) {
	start := o.now()
	plan := &planRecorder{}

	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("orchestrator turn panicked", zap.Any("recover", r))
			resp = Response{
				Reply:     scheduleFailureReply,
				PlanSteps: plan.list(),
				LatencyMS: elapsedMS(start),
				Error:     fmt.Sprintf("%v", r),
			}
		}
	}()

	t0 := o.now()
	vec := o.Intent.Predict(message)
	plan.add(PlanStep{
		Step:              StepIntentDetection,
		DetectedSchedule:  vec.Schedule,
		DetectedKnowledge: vec.Knowledge,
		LatencyMS:         elapsedMS(t0),
	})

	memCtx, _ := o.Memory.Get(ctx, sessionID)
	isReschedule := rescheduleRe.MatchString(message) && memCtx.LastAppt != nil

	switch {
	case vec.Knowledge && vec.Schedule:
		knowledgeReply, citations, schedReply, toolCalls := o.runDual(ctx, message, sessionID, isReschedule, memCtx, plan)
		return Response{
			Reply:     joinReplies(knowledgeReply, schedReply),
			Citations: citations,
			ToolCalls: toolCalls,
			PlanSteps: plan.list(),
			LatencyMS: elapsedMS(start),
		}

	case vec.Knowledge:
		reply, citations := o.runKnowledge(ctx, message, plan)
		return Response{
			Reply:     reply,
			Citations: citations,
			PlanSteps: plan.list(),
			LatencyMS: elapsedMS(start),
		}

	case vec.Schedule:
		reply, toolCalls := o.runScheduleBranch(ctx, message, sessionID, isReschedule, memCtx, plan)
		return Response{
			Reply:     reply,
			ToolCalls: toolCalls,
			PlanSteps: plan.list(),
			LatencyMS: elapsedMS(start),
		}

	default:
		return Response{
			Reply:     unclearIntentReply,
			PlanSteps: plan.list(),
			LatencyMS: elapsedMS(start),
		}
	}
}

// runDual executes the Knowledge path and the Schedule/Reschedule
// subflow concurrently (§4.5 step 4 "both", §5's dual-intent
// parallelism requirement). A failure in one branch never aborts the
// other -- each tags its own outcome.
func (o *Orchestrator) runDual(
	ctx context.Context,
	message, sessionID string,
	isReschedule bool,
	memCtx session.Context,
	plan *planRecorder,
) (knowledgeReply string, citations []knowledge.Citation, schedReply string, toolCalls []ToolCall) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		knowledgeReply, citations = o.runKnowledge(gctx, message, plan)
		return nil
	})
	g.Go(func() error {
		schedReply, toolCalls = o.runScheduleBranch(gctx, message, sessionID, isReschedule, memCtx, plan)
		return nil
	})
	_ = g.Wait()
	return
}

func joinReplies(knowledgeReply, schedReply string) string {
	switch {
	case knowledgeReply == "":
		return schedReply
	case schedReply == "":
		return knowledgeReply
	default:
		return knowledgeReply + " " + schedReply
	}
}

// runKnowledge drives the Knowledge path: retrieve, then extract the
// best sentence from the top chunk. The final {reply, citations} is
// cached under the knowledge: namespace (§4.6) so a repeated message
// skips both retrieval and extraction on a warm cache.
func (o *Orchestrator) runKnowledge(ctx context.Context, message string, plan *planRecorder) (string, []knowledge.Citation) {
	cacheKey := cachekey.Truncated("knowledge:", message)
	if o.KV != nil {
		if raw, ok := o.KV.Get(ctx, cacheKey); ok {
			var cached knowledgeCacheEntry
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached.Reply, cached.Citations
			}
		}
	}

	t0 := o.now()
	hits, err := o.Knowledge.Search(ctx, message, 3)
	plan.add(PlanStep{Step: StepRetrieveKnowledge, LatencyMS: elapsedMS(t0)})
	if err != nil {
		o.Logger.Debug("knowledge search failed", zap.Error(err))
		return "", nil
	}
	if len(hits) == 0 {
		return noKnowledgeReply, nil
	}

	top := hits[0]
	sentence, err := o.Answer.Extract(ctx, message, top.Chunk.Text)
	if err != nil {
		o.Logger.Debug("answer extraction failed, falling back to chunk text", zap.Error(err))
		sentence = top.Chunk.Text
	}
	// Only hits[0] sourced the reply sentence -- per I4, citations must
	// correspond 1:1 to chunks actually used, not every chunk retrieved.
	citations := knowledge.ToCitations(hits[:1])

	if o.KV != nil {
		if buf, err := json.Marshal(knowledgeCacheEntry{Reply: sentence, Citations: citations}); err == nil {
			o.KV.SetAsync(cacheKey, buf, knowledgeCacheTTL)
		}
	}

	return sentence, citations
}

// runScheduleBranch dispatches to the Reschedule subflow when a
// reschedule was detected against a known last_appt, else the plain
// Schedule subflow.
func (o *Orchestrator) runScheduleBranch(
	ctx context.Context,
	message, sessionID string,
	isReschedule bool,
	memCtx session.Context,
	plan *planRecorder,
) (string, []ToolCall) {
	if isReschedule {
		return o.runReschedule(ctx, message, sessionID, memCtx, plan)
	}
	return o.runSchedule(ctx, message, sessionID, plan)
}

// runSchedule is the Schedule subflow (§4.5). Both a name and a time
// are required; either missing yields the templated prompt rather than
// a partial booking.
func (o *Orchestrator) runSchedule(ctx context.Context, message, sessionID string, plan *planRecorder) (string, []ToolCall) {
	t0 := o.now()
	name, hasName := entity.ExtractName(message, o.Entities.Tagger)
	location := entity.ExtractLocation(message)
	plan.add(PlanStep{Step: StepExtractEntities, LatencyMS: elapsedMS(t0)})

	t1 := o.now()
	when, hasTime := entity.ExtractTime(message, o.now())
	plan.add(PlanStep{Step: StepExtractTime, LatencyMS: elapsedMS(t1)})

	if !hasName || !hasTime {
		return missingScheduleEntityReply, nil
	}

	t2 := o.now()
	appt, err := o.Schedule.Create(ctx, name, when, location)
	plan.add(PlanStep{Step: StepScheduleAppointment, LatencyMS: elapsedMS(t2)})
	if err != nil {
		o.Logger.Debug("schedule create failed", zap.Error(err))
		return scheduleFailureReply, []ToolCall{{
			Name:   "schedule_appointment",
			Result: ToolResult{OK: false, Error: err.Error()},
		}}
	}

	if err := o.Memory.PutLastAppt(ctx, sessionID, session.LastAppt{
		Patient:   name,
		SlotISO:   appt.NormalizedSlotISO,
		Location:  location,
		ApptID:    appt.ApptID,
		Timestamp: o.now(),
	}); err != nil {
		o.Logger.Debug("session memory write failed", zap.Error(err))
	}

	reply := fmt.Sprintf("Booked %s for %s.", name, formatShortDateTime(when))
	return reply, []ToolCall{{
		Name:   "schedule_appointment",
		Result: ToolResult{OK: true, Appointment: appt},
	}}
}

// runReschedule is the Reschedule subflow: only a new time is required,
// since the patient and appointment id come from last_appt.
func (o *Orchestrator) runReschedule(ctx context.Context, message, sessionID string, memCtx session.Context, plan *planRecorder) (string, []ToolCall) {
	t0 := o.now()
	when, hasTime := entity.ExtractTime(message, o.now())
	plan.add(PlanStep{Step: StepExtractTime, LatencyMS: elapsedMS(t0)})

	if !hasTime {
		return missingRescheduleTimeReply, nil
	}
	if memCtx.LastAppt == nil {
		return noRescheduleTargetReply, nil
	}

	t1 := o.now()
	appt, err := o.Schedule.Reschedule(ctx, memCtx.LastAppt.ApptID, when)
	plan.add(PlanStep{Step: StepRescheduleAppointment, LatencyMS: elapsedMS(t1)})
	if err != nil {
		o.Logger.Debug("reschedule failed", zap.Error(err))
		return rescheduleFailureReply, []ToolCall{{
			Name:   "reschedule_appointment",
			Result: ToolResult{OK: false, Error: err.Error()},
		}}
	}

	if err := o.Memory.PutLastAppt(ctx, sessionID, session.LastAppt{
		Patient:   memCtx.LastAppt.Patient,
		SlotISO:   appt.NormalizedSlotISO,
		Location:  memCtx.LastAppt.Location,
		ApptID:    appt.ApptID,
		Timestamp: o.now(),
	}); err != nil {
		o.Logger.Debug("session memory write failed", zap.Error(err))
	}

	reply := fmt.Sprintf("Rebooked %s for %s.", memCtx.LastAppt.Patient, formatShortDateTime(when))
	return reply, []ToolCall{{
		Name:   "reschedule_appointment",
		Result: ToolResult{OK: true, Appointment: appt},
	}}
}
