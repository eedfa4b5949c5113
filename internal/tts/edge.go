// Package tts synthesizes reply text into MP3 audio using the Edge read-aloud
// neural voices over their websocket protocol.
package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	endpoint     = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	trustedToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	// Upper bound on a single audio frame; the service chunks well below this.
	maxFrameSize = 1 << 20
)

// Client synthesizes speech with a fixed neural voice.
type Client struct {
	voice string
}

// NewClient creates a synthesis client for the given voice
// (e.g. "en-GB-SoniaNeural").
func NewClient(voice string) *Client {
	return &Client{voice: voice}
}

// Synthesize converts text to MP3 bytes. The caller bounds latency through
// ctx; playback is never awaited here.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	url := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", endpoint, trustedToken, connectionID())

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{
			"Origin": []string{"chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tts.Client.Synthesize: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	conn.SetReadLimit(maxFrameSize)

	if err := conn.Write(ctx, websocket.MessageText, speechConfig()); err != nil {
		return nil, fmt.Errorf("tts.Client.Synthesize: send config: %w", err)
	}

	if err := conn.Write(ctx, websocket.MessageText, c.ssmlRequest(text)); err != nil {
		return nil, fmt.Errorf("tts.Client.Synthesize: send ssml: %w", err)
	}

	var audio bytes.Buffer
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("tts.Client.Synthesize: read: %w", err)
		}

		switch typ {
		case websocket.MessageText:
			if bytes.Contains(data, []byte("Path:turn.end")) {
				if audio.Len() == 0 {
					return nil, fmt.Errorf("tts.Client.Synthesize: no audio for %q", truncate(text, 40))
				}
				return audio.Bytes(), nil
			}
		case websocket.MessageBinary:
			payload, err := audioPayload(data)
			if err != nil {
				return nil, fmt.Errorf("tts.Client.Synthesize: %w", err)
			}
			audio.Write(payload)
		}
	}
}

// audioPayload strips the frame header: a big-endian uint16 header length,
// the ASCII headers, then raw audio. Frames without Path:audio carry no
// payload worth keeping.
func audioPayload(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("binary frame too short (%d bytes)", len(frame))
	}

	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if 2+headerLen > len(frame) {
		return nil, fmt.Errorf("binary frame header length %d exceeds frame size %d", headerLen, len(frame))
	}

	if !bytes.Contains(frame[2:2+headerLen], []byte("Path:audio")) {
		return nil, nil
	}
	return frame[2+headerLen:], nil
}

func speechConfig() []byte {
	return []byte("X-Timestamp:" + timestamp() + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"audio-24khz-48kbitrate-mono-mp3"}}}}`)
}

func (c *Client) ssmlRequest(text string) []byte {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	ssml := fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'><voice name='%s'>%s</voice></speak>`,
		c.voice, escaped.String(),
	)

	header := "X-RequestId:" + requestID() + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + timestamp() + "\r\n" +
		"Path:ssml\r\n\r\n"

	return []byte(header + ssml)
}

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

func connectionID() string {
	return requestID()
}

// requestID is a uuid without dashes, as the service expects.
func requestID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
