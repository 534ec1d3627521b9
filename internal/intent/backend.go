package intent

import "go.uber.org/zap"

// SelectBackend implements §9's "choose at construction time": try to
// load the trained model blob at modelPath; on any failure (missing
// file, corrupt blob), fall back to the keyword backend without
// surfacing an error to the caller, per §7's "classifier unavailable"
// error class.
func SelectBackend(modelPath string, logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if modelPath == "" {
		logger.Info("intent model path not configured, using keyword backend")
		return NewKeywordBackend()
	}

	backend, err := LoadModelBackend(modelPath)
	if err != nil {
		logger.Info("intent model unavailable, falling back to keyword backend", zap.Error(err))
		return NewKeywordBackend()
	}
	return backend
}
