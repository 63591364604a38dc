package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RoomEvent is one message on a video's realtime channel. Kind is "comment"
// or "view"; Payload is the event body handed to subscribers verbatim.
type RoomEvent struct {
	Kind    string      `json:"kind"`
	VideoID uint        `json:"video_id"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

func videoRoomChannel(videoID uint) string {
	return fmt.Sprintf("room:video:%d", videoID)
}

// PublishVideoEvent fans an event out to the video's room over Redis Pub/Sub.
// Best-effort: nothing in the request path depends on delivery.
func PublishVideoEvent(videoID uint, kind string, payload interface{}) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	b, err := json.Marshal(RoomEvent{Kind: kind, VideoID: videoID, At: time.Now(), Payload: payload})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Publish(ctx, videoRoomChannel(videoID), b).Err(); err != nil && Sugar != nil {
		Sugar.Debugf("realtime publish failed video=%d err=%v", videoID, err)
	}
}

// SubscribeVideoEvents joins a video's room. Messages arrive on the returned
// channel as raw JSON until ctx is done; the subscription is closed then.
func SubscribeVideoEvents(ctx context.Context, videoID uint) (<-chan []byte, error) {
	rc := GetRedis()
	if rc == nil {
		return nil, fmt.Errorf("redis unavailable")
	}
	sub := rc.Subscribe(ctx, videoRoomChannel(videoID))
	// Force the subscription to be established before we report success.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					// slow subscriber, drop
				}
			}
		}
	}()
	return out, nil
}
