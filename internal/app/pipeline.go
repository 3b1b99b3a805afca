package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/page"
)

// Reader fetches one fixed-size page of stage input. Implementations are
// pure with respect to paging: all cursor state lives in the request.
type Reader[T any] interface {
	ReadPage(ctx context.Context, req page.Request) ([]T, error)
}

// Processor applies one stage's business rule to a single item, emitting
// zero or one notification candidate. Returning (nil, nil) skips the
// item.
type Processor[T any] interface {
	Process(ctx context.Context, item T) (*notification.Notification, error)
}

// dedupFilter discards a candidate when a notification with the same
// (user, type, initiator) triple already exists. It is what makes a
// retried or repeated run idempotent.
type dedupFilter struct {
	notifications notification.Repository
}

func (f *dedupFilter) admit(ctx context.Context, n *notification.Notification) (bool, error) {
	exists, err := f.notifications.Exists(ctx, n.UserID, n.Type, n.InitiatorID)
	if err != nil {
		return false, fmt.Errorf("checking existing notification (user %d, type %s, initiator %d): %w",
			n.UserID, n.Type, n.InitiatorID, err)
	}
	return !exists, nil
}

// runStage exhausts the reader page by page, runs every item through the
// processor and the dedup filter, groups survivors into fixed-size
// chunks, and hands each chunk to the writer. Processor and writer
// errors abort the stage; the caller decides what that means for the
// rest of the run.
func runStage[T any](
	ctx context.Context,
	name string,
	reader Reader[T],
	proc Processor[T],
	filter *dedupFilter,
	writer Writer,
	pageSize, chunkSize int,
	log *logrus.Logger,
) error {
	req := page.First(pageSize)
	var chunk []*notification.Notification
	emitted := 0

	for {
		items, err := reader.ReadPage(ctx, req)
		if err != nil {
			return fmt.Errorf("stage %s: reading page %d: %w", name, req.Number, err)
		}

		for _, item := range items {
			candidate, err := proc.Process(ctx, item)
			if err != nil {
				return fmt.Errorf("stage %s: processing item: %w", name, err)
			}
			if candidate == nil {
				continue
			}

			ok, err := filter.admit(ctx, candidate)
			if err != nil {
				return fmt.Errorf("stage %s: %w", name, err)
			}
			if !ok {
				log.Debugf("stage %s: duplicate notification suppressed (user %d, type %s, initiator %d)",
					name, candidate.UserID, candidate.Type, candidate.InitiatorID)
				continue
			}

			chunk = append(chunk, candidate)
			if len(chunk) == chunkSize {
				if err := writer.Write(ctx, chunk); err != nil {
					return fmt.Errorf("stage %s: writing chunk: %w", name, err)
				}
				emitted += len(chunk)
				chunk = nil
			}
		}

		if len(items) < req.Size {
			break
		}
		req = req.Next()
	}

	if len(chunk) > 0 {
		if err := writer.Write(ctx, chunk); err != nil {
			return fmt.Errorf("stage %s: writing final chunk: %w", name, err)
		}
		emitted += len(chunk)
	}

	log.Infof("stage %s finished, %d notifications emitted", name, emitted)
	return nil
}
