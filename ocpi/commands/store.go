package commands

import (
	"context"
	"emsp/ocpi/envelope"
	"fmt"
	"sort"
	"sync"
	"time"
)

// PendingCommand tracks one dispatched command from registration until its
// asynchronous result arrives. Values handed out by Store are snapshots.
type PendingCommand struct {
	CommandId     string
	RequestId     string
	CorrelationId string
	Type          Type
	Command       Command
	Response      *envelope.Response[CommandResponse]
	Result        *CommandResult
	Created       time.Time
	Updated       time.Time
	ResultAt      time.Time
	done          chan struct{}
}

// Done is closed once the asynchronous result has been recorded.
func (pc *PendingCommand) Done() <-chan struct{} {
	return pc.done
}

func (pc *PendingCommand) HasResult() bool {
	return pc.Result != nil
}

// Store maps command ids to pending commands. Entries older than the ttl are
// dropped by the reaper; a zero ttl keeps entries until Remove is called.
type Store struct {
	mu       sync.Mutex
	pending  map[string]*PendingCommand
	ttl      time.Duration
	onExpire func(pc PendingCommand)
	stop     chan struct{}
	stopOnce sync.Once
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		pending: make(map[string]*PendingCommand),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

// OnExpire registers a hook called, outside the store lock, for every reaped entry.
func (s *Store) OnExpire(hook func(pc PendingCommand)) {
	s.mu.Lock()
	s.onExpire = hook
	s.mu.Unlock()
}

// Upsert inserts the entry built by buildIfAbsent, or lets mergeIfPresent update the
// existing one. A result that is already recorded survives the merge.
func (s *Store) Upsert(commandId string, buildIfAbsent func() *PendingCommand, mergeIfPresent func(existing *PendingCommand)) PendingCommand {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pending[commandId]
	if !ok {
		pc := buildIfAbsent()
		if pc == nil {
			pc = &PendingCommand{}
		}
		pc.CommandId = commandId
		if pc.Created.IsZero() {
			pc.Created = now
		}
		pc.Updated = now
		pc.done = make(chan struct{})
		if pc.Result != nil {
			close(pc.done)
		}
		s.pending[commandId] = pc
		return *pc
	}

	result, resultAt, done, created := existing.Result, existing.ResultAt, existing.done, existing.Created
	if mergeIfPresent != nil {
		mergeIfPresent(existing)
	}
	existing.CommandId = commandId
	existing.Created = created
	existing.done = done
	if result != nil {
		existing.Result = result
		existing.ResultAt = resultAt
	} else if existing.Result != nil {
		existing.ResultAt = now
		close(done)
	}
	existing.Updated = now
	return *existing
}

func (s *Store) TryGet(commandId string) (PendingCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.pending[commandId]
	if !ok {
		return PendingCommand{}, false
	}
	return *pc, true
}

// SetResponse records the synchronous answer and touches nothing else.
func (s *Store) SetResponse(commandId string, response *envelope.Response[CommandResponse]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.pending[commandId]
	if !ok {
		return false
	}
	pc.Response = response
	pc.Updated = time.Now().UTC()
	return true
}

// RecordResult stores the asynchronous result. A result for an unknown id creates a
// placeholder entry so a later registration can merge into it. Only the first result
// per command is kept; recorded is false for duplicates.
func (s *Store) RecordResult(commandId string, commandType Type, result *CommandResult) (pc PendingCommand, recorded bool) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pending[commandId]
	if !ok {
		existing = &PendingCommand{
			CommandId: commandId,
			Type:      commandType,
			Created:   now,
			done:      make(chan struct{}),
		}
		s.pending[commandId] = existing
	}
	if existing.Result != nil {
		return *existing, false
	}
	existing.Result = result
	existing.ResultAt = now
	existing.Updated = now
	close(existing.done)
	return *existing, true
}

// Wait blocks until the result of commandId arrives or ctx is done.
func (s *Store) Wait(ctx context.Context, commandId string) (*CommandResult, error) {
	pc, ok := s.TryGet(commandId)
	if !ok {
		return nil, fmt.Errorf("no pending command %s", commandId)
	}
	select {
	case <-pc.done:
		latest, ok := s.TryGet(commandId)
		if !ok {
			return nil, fmt.Errorf("command %s expired", commandId)
		}
		return latest.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) Remove(commandId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[commandId]
	delete(s.pending, commandId)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// List returns snapshots of all entries, oldest first.
func (s *Store) List() []PendingCommand {
	s.mu.Lock()
	list := make([]PendingCommand, 0, len(s.pending))
	for _, pc := range s.pending {
		list = append(list, *pc)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Created.Before(list[j].Created)
	})
	return list
}

// Expire drops entries created before now minus the ttl and returns how many were removed.
func (s *Store) Expire(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)
	var expired []PendingCommand
	s.mu.Lock()
	for id, pc := range s.pending {
		if pc.Created.Before(cutoff) {
			if pc.Result == nil {
				close(pc.done)
			}
			expired = append(expired, *pc)
			delete(s.pending, id)
		}
	}
	hook := s.onExpire
	s.mu.Unlock()

	if hook != nil {
		for _, pc := range expired {
			hook(pc)
		}
	}
	return len(expired)
}

// StartReaper expires entries every interval until Close is called.
func (s *Store) StartReaper(interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				s.Expire(now.UTC())
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}
