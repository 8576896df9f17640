package texttospeech

import "github.com/cadencehq/cadence/core/audio"

// TextToSpeechOptions configures a synthesis client.
type TextToSpeechOptions struct {
	// EncodingInfo selects the PCM encoding synthesized audio is delivered
	// in. Defaults to the pipeline default encoding.
	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.EncodingInfo = encodingInfo
	}
}
