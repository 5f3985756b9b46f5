package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"feedbackquest/internal/model"
	"feedbackquest/internal/repository"
)

// mockGateway returns queued replies in order, then repeats the last one
type mockGateway struct {
	t       *testing.T
	replies []string
	err     error
	forbid  bool
	calls   int
	prompts []string
}

func (m *mockGateway) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if m.forbid {
		m.t.Fatalf("gateway must not be called")
	}
	m.calls++
	m.prompts = append(m.prompts, messages[len(messages)-1].Content)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

type fakeQuestionRepo struct {
	questions []*model.Question
}

func (r *fakeQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeQuestionRepo) Upsert(ctx context.Context, q *model.Question) error {
	for i, existing := range r.questions {
		if existing.ID == q.ID {
			r.questions[i] = q
			return nil
		}
	}
	return r.Create(ctx, q)
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) GetAll(ctx context.Context) ([]*model.Question, error) {
	return r.questions, nil
}

func (r *fakeQuestionRepo) GetByTypes(ctx context.Context, types ...model.QuestionType) ([]*model.Question, error) {
	out := make([]*model.Question, 0)
	for _, q := range r.questions {
		for _, t := range types {
			if q.Type == t {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

type fakeResponseRepo struct {
	created []*model.Response
	answers map[string][]string
	err     error
}

func (r *fakeResponseRepo) Create(ctx context.Context, resp *model.Response) error {
	if r.err != nil {
		return r.err
	}
	resp.ID = "r" + strconv.Itoa(len(r.created)+1)
	r.created = append(r.created, resp)
	return nil
}

func (r *fakeResponseRepo) GetByQuestionID(ctx context.Context, questionID string) ([]*model.Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*model.Response, 0)
	for _, resp := range r.created {
		if resp.QuestionID == questionID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) GetTextAnswers(ctx context.Context, questionID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.answers[questionID], nil
}

type fakeKeypointRepo struct {
	rows []*model.Keypoint
}

func (r *fakeKeypointRepo) GetByQuestionID(ctx context.Context, questionID string) ([]*model.Keypoint, error) {
	out := make([]*model.Keypoint, 0)
	for _, kp := range r.rows {
		if kp.QuestionID == questionID {
			out = append(out, kp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurrenceCount > out[j].OccurrenceCount })
	return out, nil
}

func (r *fakeKeypointRepo) GetByID(ctx context.Context, id string) (*model.Keypoint, error) {
	for _, kp := range r.rows {
		if kp.ID == id {
			return kp, nil
		}
	}
	return nil, nil
}

func (r *fakeKeypointRepo) InsertMany(ctx context.Context, kps []*model.Keypoint) error {
	r.rows = append(r.rows, kps...)
	return nil
}

func (r *fakeKeypointRepo) DeleteByQuestionID(ctx context.Context, questionID string) (int64, error) {
	kept := make([]*model.Keypoint, 0)
	var n int64
	for _, kp := range r.rows {
		if kp.QuestionID == questionID {
			n++
			continue
		}
		kept = append(kept, kp)
	}
	r.rows = kept
	return n, nil
}

type fakeLikeRepo struct {
	likes []*model.KeypointLike
}

func (r *fakeLikeRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeLikeRepo) Create(ctx context.Context, like *model.KeypointLike) error {
	for _, l := range r.likes {
		if l.KeypointID == like.KeypointID && l.UserID == like.UserID {
			return repository.ErrDuplicateLike
		}
	}
	r.likes = append(r.likes, like)
	return nil
}

func (r *fakeLikeRepo) Delete(ctx context.Context, keypointID, userID string) (bool, error) {
	for i, l := range r.likes {
		if l.KeypointID == keypointID && l.UserID == userID {
			r.likes = append(r.likes[:i], r.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLikeRepo) InsertMany(ctx context.Context, likes []*model.KeypointLike) error {
	r.likes = append(r.likes, likes...)
	return nil
}

func (r *fakeLikeRepo) CountByKeypointIDs(ctx context.Context, ids []string) (map[string]int, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	counts := make(map[string]int)
	for _, l := range r.likes {
		if want[l.KeypointID] {
			counts[l.KeypointID]++
		}
	}
	return counts, nil
}

func (r *fakeLikeRepo) DeleteByKeypointIDs(ctx context.Context, ids []string) (int64, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]*model.KeypointLike, 0)
	var n int64
	for _, l := range r.likes {
		if drop[l.KeypointID] {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.likes = kept
	return n, nil
}

// fakeLock grants each question once until released
type fakeLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]bool)}
}

func (l *fakeLock) Acquire(ctx context.Context, questionID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[questionID] {
		return "", nil
	}
	l.held[questionID] = true
	return "token-" + questionID, nil
}

func (l *fakeLock) Release(ctx context.Context, questionID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, questionID)
	return nil
}

type sentEvent struct {
	UserID  string
	Type    string
	Payload interface{}
}

type recordingBroadcaster struct {
	events []sentEvent
}

func (b *recordingBroadcaster) SendToUser(userID, msgType string, payload interface{}) {
	b.events = append(b.events, sentEvent{UserID: userID, Type: msgType, Payload: payload})
}
