package level

// feedbackDoneMsg clears the correct/incorrect banner. seq guards against
// an older timer clearing newer feedback.
type feedbackDoneMsg struct {
	seq int
}
