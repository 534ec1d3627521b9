package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordBackendScheduleKeyword(t *testing.T) {
	v := NewKeywordBackend().Predict("Book Chen for tomorrow at 10:30")
	assert.True(t, v.Schedule)
	assert.False(t, v.Knowledge)
}

func TestKeywordBackendKnowledgeKeyword(t *testing.T) {
	v := NewKeywordBackend().Predict("what is the late policy?")
	assert.False(t, v.Schedule)
	assert.True(t, v.Knowledge)
}

func TestKeywordBackendBothKeywordsScheduleWins(t *testing.T) {
	// "book" is a schedule keyword; "policy" is a knowledge keyword.
	// Per §4.3, knowledge is only set when schedule is NOT present.
	v := NewKeywordBackend().Predict("book an appointment, what is the policy")
	assert.True(t, v.Schedule)
	assert.False(t, v.Knowledge)
}

func TestKeywordBackendUnclearMessage(t *testing.T) {
	v := NewKeywordBackend().Predict("hello")
	assert.False(t, v.Schedule)
	assert.False(t, v.Knowledge)
}

func TestModelBackendTopKWithFallback(t *testing.T) {
	m := &ModelBackend{weights: modelWeights{
		ScheduleWeights:  map[string]float64{"book": 5},
		KnowledgeWeights: map[string]float64{"policy": 5},
	}}
	v := m.Predict("book now")
	assert.True(t, v.Schedule)

	// A message matching neither vocabulary produces a tied 0/0 score,
	// i.e. 0.5/0.5 after softmax; both clear the 0.3 threshold, so at
	// least one (here both) labels are set.
	v2 := m.Predict("zzz qqq")
	assert.True(t, v2.Schedule || v2.Knowledge)
}

func TestSelectBackendFallsBackWhenModelMissing(t *testing.T) {
	backend := SelectBackend("/nonexistent/path/model.gob", nil)
	_, ok := backend.(*KeywordBackend)
	assert.True(t, ok)
}
