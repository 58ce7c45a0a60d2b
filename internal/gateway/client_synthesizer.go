package gateway

import (
	"github.com/lexiqai/interview-gateway/internal/observability"
	"github.com/lexiqai/interview-gateway/internal/speech"
)

// clientSynthesizer forwards utterances to the connected client, which
// plays them with its native speech synthesis engine at the requested
// rate, pitch and volume. No completion signal comes back.
type clientSynthesizer struct {
	send func(serverEvent)
}

func (c *clientSynthesizer) Speak(u speech.Utterance) error {
	utterance := u
	c.send(serverEvent{Event: "speak", Utterance: &utterance})
	return nil
}

func (c *clientSynthesizer) Close() error {
	return nil
}

// meteredSynthesizer records playback outcomes for the session.
type meteredSynthesizer struct {
	inner   speech.Synthesizer
	metrics *observability.SessionMetrics
}

func (m *meteredSynthesizer) Speak(u speech.Utterance) error {
	err := m.inner.Speak(u)
	m.metrics.RecordSpeak(err == nil)
	return err
}

func (m *meteredSynthesizer) Close() error {
	return m.inner.Close()
}
