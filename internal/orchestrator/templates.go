package orchestrator

import "time"

// Templated-reply strings are part of the contract (§9): any wording
// change here breaks the behavior tests in §8.
const (
	unclearIntentReply = "I'm not sure what you mean. You can ask about our policies or schedule an appointment."

	missingScheduleEntityReply = "I need a patient name and a time to book the appointment -- for example, 'Book Chen for tomorrow at 10:30'."

	missingRescheduleTimeReply = "What time would you like to move the appointment to -- for example, 'Make it 11:00'."

	noRescheduleTargetReply = "I don't have an appointment on file to reschedule."

	scheduleFailureReply = "Sorry, I couldn't book that appointment. Please try again."

	rescheduleFailureReply = "Sorry, I couldn't find that appointment to reschedule."

	noKnowledgeReply = "I don't have any information on that."
)

// formatShortDateTime renders t in the en-US short date/time format
// §4.5 asks the Schedule/Reschedule subflows to confirm with.
func formatShortDateTime(t time.Time) string {
	return t.Format("1/2/2006 3:04 PM")
}
