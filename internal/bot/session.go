package bot

import (
	"sync"

	"github.com/jmorales/gastosbot/internal/model"
)

// flow identifies which conversation owns the user's session. Flows are
// mutually exclusive: starting one replaces whatever was in progress.
type flow int

const (
	flowNone flow = iota
	flowGuided
	flowQuick
	flowRecurring
)

// stage is the step a flow is waiting on. Not every flow visits every
// stage; the guided flow runs category→amount→payment→description, the
// quick flow category→payment (amount first when a photo is pending), and
// rule setup kind→category→amount→day→payment→description.
type stage int

const (
	stageNone stage = iota
	stageKind
	stageCategory
	stageAmount
	stageDay
	stagePayment
	stageDescription
)

// session is one user's in-progress conversation. Sessions never expire;
// they live until the flow commits or cancels.
type session struct {
	draft model.Draft
	flow  flow
	stage stage
}

// expects reports whether the session is parked at the given step of the
// given flow. Callback handlers use it to drop stale button presses from
// keyboards that outlived their flow.
func (s *session) expects(fl flow, st stage) bool {
	return s != nil && s.flow == fl && s.stage == st
}

// sessionStore holds per-user sessions. Events are processed one at a
// time, but the recurring notifier runs on the cron goroutine, so access
// stays locked.
type sessionStore struct {
	sessions map[int64]*session
	mu       sync.Mutex
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

// get returns the user's session, or nil when no flow is active.
func (s *sessionStore) get(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// begin replaces the user's session with a fresh one for the given flow.
func (s *sessionStore) begin(userID int64, fl flow, st stage) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{flow: fl, stage: st}
	s.sessions[userID] = sess
	return sess
}

func (s *sessionStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
