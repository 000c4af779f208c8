package chat

import "sync"

// Flow tags the multi-step input sequence currently active for a user.
// At most one flow is active per user; FlowNone means the router dispatches
// commands directly.
type Flow int

const (
	FlowNone Flow = iota
	FlowProfileName
	FlowProfileField
	FlowProfileValue
	FlowJoinClass
	FlowHomeworkMode
	FlowHomeworkSubject
	FlowHomeworkText
	FlowPersonalSubject
	FlowPersonalText
	FlowClassInfo
	FlowClassName
	FlowJoinReview
	FlowAssignAssistant
)

// collected-data keys
const (
	dataField        = "field"
	dataSubject      = "subject"
	dataEditExisting = "edit_existing"
)

// session holds the in-memory flow state of one user. It is deliberately not
// persisted: a restart resets every in-progress flow to FlowNone.
type session struct {
	mu   sync.Mutex
	flow Flow
	data map[string]string
}

func (s *session) start(flow Flow) {
	s.flow = flow
	s.data = make(map[string]string)
}

func (s *session) reset() {
	s.flow = FlowNone
	s.data = nil
}

func (s *session) get(key string) string { return s.data[key] }

func (s *session) set(key, val string) {
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.data[key] = val
}

// sessionStore keys sessions by user id. acquire returns the user's session
// with its lock held, serializing same-user events in arrival order while
// leaving unrelated users free to proceed in parallel.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (st *sessionStore) acquire(userID int64) *session {
	st.mu.Lock()
	sess, ok := st.sessions[userID]
	if !ok {
		sess = &session{}
		st.sessions[userID] = sess
	}
	st.mu.Unlock()

	sess.mu.Lock()
	return sess
}
