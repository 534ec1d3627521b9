package intent

import (
	"encoding/gob"
	"math"
	"os"
	"strings"

	"github.com/front-desk-ai/rag-orchestrator/internal/lexical"
)

// confidenceThreshold is the bar a label's confidence must clear to be
// set true on its own; if neither label clears it, the top-1 label is
// set true anyway, per §4.3's primary path.
const confidenceThreshold = 0.3

// modelWeights is the on-disk shape of the intent model blob: a
// word n-gram bag-of-words weight per label plus a bias, trained
// offline and loaded as a build artifact (§6). Unigrams only -- the
// "n-gram" in the spec's description covers unigram and bigram
// features, but a shallow two-label softmax gets most of its signal
// from unigrams, and bigram tables are a meaningfully larger blob for
// a front-office vocabulary this small.
type modelWeights struct {
	ScheduleWeights  map[string]float64
	KnowledgeWeights map[string]float64
	ScheduleBias     float64
	KnowledgeBias    float64
}

// ModelBackend is the trained shallow text classifier: a bag-of-words
// linear model with a softmax over {schedule, knowledge}.
type ModelBackend struct {
	weights modelWeights
}

// LoadModelBackend reads a gob-encoded modelWeights blob from path. The
// caller should fall back to NewKeywordBackend when this returns an
// error, per §4.3's fallback path and §7's "classifier unavailable"
// error class.
func LoadModelBackend(path string) (*ModelBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var w modelWeights
	if err := gob.NewDecoder(f).Decode(&w); err != nil {
		return nil, err
	}
	return &ModelBackend{weights: w}, nil
}

func (m *ModelBackend) Predict(message string) Vector {
	terms := lexical.Tokenize(message)

	scheduleScore := m.weights.ScheduleBias
	knowledgeScore := m.weights.KnowledgeBias
	for _, t := range terms {
		scheduleScore += m.weights.ScheduleWeights[t]
		knowledgeScore += m.weights.KnowledgeWeights[t]
	}

	pSchedule, pKnowledge := softmax2(scheduleScore, knowledgeScore)
	preds := []Prediction{
		{Label: "schedule", Confidence: pSchedule},
		{Label: "knowledge", Confidence: pKnowledge},
	}
	return topKWithFallback(preds)
}

// topKWithFallback applies §4.3's primary-path rule: any label whose
// confidence clears the threshold is set; if none do, the single
// highest-confidence label is set instead.
func topKWithFallback(preds []Prediction) Vector {
	var v Vector
	var top Prediction
	haveTop := false

	for _, p := range preds {
		if !haveTop || p.Confidence > top.Confidence {
			top = p
			haveTop = true
		}
		if p.Confidence >= confidenceThreshold {
			setLabel(&v, p.Label)
		}
	}
	if !v.Schedule && !v.Knowledge && haveTop {
		setLabel(&v, top.Label)
	}
	return v
}

func setLabel(v *Vector, label string) {
	switch strings.ToLower(label) {
	case "schedule":
		v.Schedule = true
	case "knowledge":
		v.Knowledge = true
	}
}

func softmax2(a, b float64) (float64, float64) {
	max := a
	if b > max {
		max = b
	}
	ea := math.Exp(a - max)
	eb := math.Exp(b - max)
	sum := ea + eb
	return ea / sum, eb / sum
}
