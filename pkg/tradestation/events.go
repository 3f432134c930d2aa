package tradestation

import (
	"context"
	"encoding/json"
	"io"
)

// Heartbeat is the provider's keepalive marker on a streaming connection.
type Heartbeat struct {
	Heartbeat int64  `json:"Heartbeat"`
	Timestamp string `json:"Timestamp"`
}

// StreamError is an error object delivered in-band on a stream.
type StreamError struct {
	Error   string `json:"Error"`
	Message string `json:"Message"`
}

// StreamStatus reports a change in the stream's lifecycle, such as the end
// of the initial snapshot.
type StreamStatus struct {
	StreamStatus string `json:"StreamStatus"`
}

// StreamHandler receives classified stream events. Each decoded object is
// inspected for marker keys in priority order: heartbeat, error, stream
// status, deletion; anything else is data. Exactly one method fires per
// object.
type StreamHandler interface {
	OnData(data json.RawMessage)
	OnHeartbeat(hb Heartbeat)
	OnError(e StreamError)
	OnStatus(s StreamStatus)
	OnDeleted(data json.RawMessage)
}

// BaseHandler is a no-op StreamHandler for embedding, so consumers only
// override the events they care about.
type BaseHandler struct{}

func (BaseHandler) OnData(json.RawMessage)    {}
func (BaseHandler) OnHeartbeat(Heartbeat)     {}
func (BaseHandler) OnError(StreamError)       {}
func (BaseHandler) OnStatus(StreamStatus)     {}
func (BaseHandler) OnDeleted(json.RawMessage) {}

// dispatchEvent classifies one decoded object and fires the matching
// handler method.
func dispatchEvent(raw json.RawMessage, h StreamHandler) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		// Valid JSON but not an object; treat as data.
		h.OnData(raw)
		return
	}

	switch {
	case hasKey(probe, "Heartbeat"):
		var hb Heartbeat
		_ = json.Unmarshal(raw, &hb)
		h.OnHeartbeat(hb)
	case hasKey(probe, "Error"):
		var e StreamError
		_ = json.Unmarshal(raw, &e)
		h.OnError(e)
	case hasKey(probe, "StreamStatus"):
		var s StreamStatus
		_ = json.Unmarshal(raw, &s)
		h.OnStatus(s)
	case hasKey(probe, "Deleted"):
		h.OnDeleted(raw)
	default:
		h.OnData(raw)
	}
}

func hasKey(probe map[string]json.RawMessage, key string) bool {
	_, ok := probe[key]
	return ok
}

// consumeStream opens a stream and pumps every object through the handler
// until the stream ends, fails, or ctx is cancelled. A clean end of stream
// returns nil; a malformed line returns the RequestError that killed the
// stream.
func (c *Client) consumeStream(ctx context.Context, r Request, h StreamHandler) error {
	stream, err := c.Stream(ctx, r)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		raw, err := stream.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		dispatchEvent(raw, h)
	}
}
