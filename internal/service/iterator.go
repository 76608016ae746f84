// Package service turns the Kafka command topic into attendance operations.
// An Iterator decodes messages into commands and a Dispatcher applies them to
// the controller, one at a time and in topic order.
package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"attendance/internal/models"
)

type Iterator struct {
	msgIterator MessageIterator
	logger      *zap.Logger
}

func NewIterator(iterator MessageIterator, logger *zap.Logger) *Iterator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Iterator{msgIterator: iterator, logger: logger}
}

// Commands starts a goroutine that decodes every message into a Command and
// emits it. Messages that are not valid commands are logged, committed and
// skipped so that they are not redelivered forever. The returned channel is
// closed when the underlying Messages() channel is closed or ctx is done.
func (it *Iterator) Commands(ctx context.Context) <-chan *models.Command {
	out := make(chan *models.Command)
	go func() {
		defer close(out)

		messages := it.msgIterator.Messages()
		for {
			var msg kafka.Message
			select {
			case <-ctx.Done():
				return
			case m, ok := <-messages:
				if !ok {
					return
				}
				msg = m
			}

			var cmd models.Command
			if err := json.Unmarshal(msg.Value, &cmd); err != nil {
				it.logger.Warn("skipping undecodable command", zap.Int64("offset", msg.Offset), zap.Error(err))
				it.commit(ctx, msg)
				continue
			}
			cmd.Name = strings.TrimSpace(cmd.Name)
			if cmd.Name == "" && len(msg.Key) > 0 {
				cmd.Name = string(msg.Key)
			}

			select {
			case out <- &cmd:
			case <-ctx.Done():
				return
			}
			it.commit(ctx, msg)
		}
	}()
	return out
}

func (it *Iterator) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		it.logger.Warn("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
