package burst

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
)

// HandleChanged merges a title/url change into the owned tree. An unknown
// id is ignored.
func (s *Service) HandleChanged(ctx context.Context, id string, fields model.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tree.Update(id, fields) {
		logger.Log.WithField("id", id).Debug("change for unknown node ignored")
		return nil
	}
	return s.recomputeLocked(ctx)
}

// HandleRemoved splices the node out of the owned tree. When the id cannot
// be located the whole tree is refetched from the source.
func (s *Service) HandleRemoved(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, found := s.tree.Remove(id)
	if !found {
		logger.Log.WithField("id", id).Debug("removed node not in tree, refetching")
		return s.refreshLocked(ctx)
	}
	s.tree = tree
	return s.recomputeLocked(ctx)
}

// HandleEvent dispatches one notification.
func (s *Service) HandleEvent(ctx context.Context, ev model.Event) error {
	switch ev.Kind {
	case model.EventChanged:
		return s.HandleChanged(ctx, ev.ID, ev.Fields)
	case model.EventRemoved:
		return s.HandleRemoved(ctx, ev.ID)
	case model.EventReloaded:
		return s.Refresh(ctx)
	}
	return fmt.Errorf("unknown event kind %d", ev.Kind)
}

// Run handles notifications one at a time, in delivery order, until ctx is
// done or events is closed. Handler failures are logged and the loop
// continues.
func (s *Service) Run(ctx context.Context, events <-chan model.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			err := s.HandleEvent(ctx, ev)
			if err == nil {
				continue
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Log.WithFields(logrus.Fields{
				"event": ev.Kind.String(),
				"id":    ev.ID,
			}).WithError(err).Error("handle notification")
		}
	}
}

// Edit sends a title/url change to the sink. An edit that matches the
// current values is not sent. The owned tree is updated by the resulting
// notification.
func (s *Service) Edit(ctx context.Context, id string, fields model.Fields) (*model.Node, error) {
	current, err := s.Node(id)
	if err != nil {
		return nil, err
	}
	if unchanged(current, fields) {
		return current, nil
	}

	raw, err := s.sink.UpdateNode(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("id", id).Info("bookmark edited")
	updated := model.Normalize([]*model.RawNode{raw})
	if len(updated) == 0 {
		return current, nil
	}
	updated[0].Path = current.Path
	return updated[0], nil
}

func unchanged(n *model.Node, fields model.Fields) bool {
	if fields.Empty() {
		return true
	}
	if fields.Title != nil && *fields.Title != n.Title {
		return false
	}
	if fields.URL != nil && (n.URL == nil || *fields.URL != *n.URL) {
		return false
	}
	return true
}

// Remove sends a removal to the sink.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.sink.RemoveNode(ctx, id); err != nil {
		return err
	}
	logger.Log.WithField("id", id).Info("bookmark removed")
	return nil
}
