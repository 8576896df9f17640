package speechtotext

// TranscriptionOptions configures a transcription client. Callbacks are
// optional; unset callbacks disable the corresponding upstream features.
type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives partial results while a segment
	// is still being decoded.
	InterimTranscriptionCallback func(transcript string)

	// Model overrides the engine's default model.
	Model string
	// Language overrides the engine's default language.
	Language string
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithModel(model string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Model = model
	}
}

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Language = language
	}
}
