package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/repository/contract"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/events"
	"cognimed-be/pkg/llm"
	"cognimed-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// memStore backs every fake repository. Specifications are interpreted by type.
type memStore struct {
	mu sync.Mutex

	users         []*entity.User
	doctors       []*entity.Doctor
	credentials   []*entity.Credential
	posts         []*entity.Post
	prescriptions []*entity.Prescription
	embeddings    []*entity.PostEmbedding

	nextCredential   uint
	nextPrescription uint
	findAllErr       error
}

type fakeFactory struct {
	store *memStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{store: &memStore{}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{s: f.store}
}

type fakeUoW struct {
	s *memStore
}

func (u *fakeUoW) Begin(ctx context.Context) error { return nil }
func (u *fakeUoW) Commit() error                   { return nil }
func (u *fakeUoW) Rollback() error                 { return nil }

func (u *fakeUoW) UserRepository() contract.UserRepository             { return &fakeUserRepo{u.s} }
func (u *fakeUoW) DoctorRepository() contract.DoctorRepository         { return &fakeDoctorRepo{u.s} }
func (u *fakeUoW) CredentialRepository() contract.CredentialRepository { return &fakeCredentialRepo{u.s} }
func (u *fakeUoW) PostRepository() contract.PostRepository             { return &fakePostRepo{u.s} }
func (u *fakeUoW) PostEmbeddingRepository() contract.PostEmbeddingRepository {
	return &fakeEmbeddingRepo{u.s}
}
func (u *fakeUoW) PrescriptionRepository() contract.PrescriptionRepository {
	return &fakePrescriptionRepo{u.s}
}

func matchPerson(email, username string, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByUsername:
			if username != sp.Username {
				return false
			}
		case specification.ByEmail:
			if email != sp.Email {
				return false
			}
		case specification.EmailOrUsername:
			if email != sp.Email && username != sp.Username {
				return false
			}
		}
	}
	return true
}

func wantsPosts(specs []specification.Specification) bool {
	for _, spec := range specs {
		if _, ok := spec.(specification.WithPosts); ok {
			return true
		}
	}
	return false
}

// ownedPosts returns the owner's posts, newest first.
func (s *memStore) ownedPosts(userId, doctorId *uuid.UUID) []*entity.Post {
	var out []*entity.Post
	for _, p := range s.posts {
		if userId != nil && p.UserId != nil && *p.UserId == *userId {
			out = append(out, p)
		}
		if doctorId != nil && p.DoctorId != nil && *p.DoctorId == *doctorId {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedTime.After(out[j].CreatedTime) })
	return out
}

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *user
	r.s.users = append(r.s.users, &cp)
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, u := range r.s.users {
		if u.Id == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			break
		}
	}
	kept := r.s.posts[:0]
	for _, p := range r.s.posts {
		if p.UserId == nil || *p.UserId != id {
			kept = append(kept, p)
		}
	}
	r.s.posts = kept
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if matchPerson(u.Email, u.Username, specs) {
			cp := *u
			if wantsPosts(specs) {
				cp.Posts = r.s.ownedPosts(&cp.Id, nil)
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if matchPerson(u.Email, u.Username, specs) {
			n++
		}
	}
	return n, nil
}

type fakeDoctorRepo struct{ s *memStore }

func (r *fakeDoctorRepo) Create(ctx context.Context, doctor *entity.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *doctor
	r.s.doctors = append(r.s.doctors, &cp)
	return nil
}

func (r *fakeDoctorRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Doctor, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDoctorRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Doctor
	for _, d := range r.s.doctors {
		if matchPerson(d.Email, d.Username, specs) {
			cp := *d
			if wantsPosts(specs) {
				cp.Posts = r.s.ownedPosts(nil, &cp.Id)
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeCredentialRepo struct{ s *memStore }

func (r *fakeCredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCredential++
	cp := *c
	cp.Id = r.s.nextCredential
	c.Id = cp.Id
	r.s.credentials = append(r.s.credentials, &cp)
	return nil
}

func (r *fakeCredentialRepo) DeleteByUsername(ctx context.Context, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.credentials[:0]
	for _, c := range r.s.credentials {
		if c.Username != username {
			kept = append(kept, c)
		}
	}
	r.s.credentials = kept
	return nil
}

func (r *fakeCredentialRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
outer:
	for _, c := range r.s.credentials {
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByUsername:
				if c.Username != sp.Username {
					continue outer
				}
			case specification.CredentialKind:
				if c.IsDoctor != sp.IsDoctor {
					continue outer
				}
			}
		}
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

type fakePostRepo struct{ s *memStore }

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *post
	cp.Replies = nil
	r.s.posts = append(r.s.posts, &cp)
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ids, _ := r.SubtreeIDs(ctx, id)
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, i := range ids {
		drop[i] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.posts[:0]
	for _, p := range r.s.posts {
		if !drop[p.Id] {
			kept = append(kept, p)
		}
	}
	r.s.posts = kept
	return nil
}

func (r *fakePostRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Post, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakePostRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findAllErr != nil {
		return nil, r.s.findAllErr
	}

	out := make([]*entity.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		cp := *p
		out = append(out, &cp)
	}

	withReplies := false
	var page *specification.Pagination
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByPostID:
			out = filterPosts(out, func(p *entity.Post) bool { return p.Id == sp.ID })
		case specification.TopLevel:
			out = filterPosts(out, func(p *entity.Post) bool { return p.ParentId == nil })
		case specification.NonEmptyText:
			out = filterPosts(out, func(p *entity.Post) bool { return strings.TrimSpace(p.Text) != "" })
		case specification.OwnedByUser:
			out = filterPosts(out, func(p *entity.Post) bool { return p.UserId != nil && *p.UserId == sp.UserID })
		case specification.OrderBy:
			desc := sp.Desc
			sort.SliceStable(out, func(i, j int) bool {
				if desc {
					return out[i].CreatedTime.After(out[j].CreatedTime)
				}
				return out[i].CreatedTime.Before(out[j].CreatedTime)
			})
		case specification.Pagination:
			p := sp
			page = &p
		case specification.WithReplies:
			withReplies = true
		}
	}

	if page != nil {
		if page.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[page.Offset:]
		}
		if page.Limit >= 0 && page.Limit < len(out) {
			out = out[:page.Limit]
		}
	}

	if withReplies {
		for _, p := range out {
			for _, c := range r.s.posts {
				if c.ParentId != nil && *c.ParentId == p.Id {
					cp := *c
					p.Replies = append(p.Replies, &cp)
				}
			}
		}
	}
	return out, nil
}

func filterPosts(in []*entity.Post, keep func(*entity.Post) bool) []*entity.Post {
	out := in[:0]
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *fakePostRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakePostRepo) ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.posts {
		if p.Id == id {
			return p.ParentId, nil
		}
	}
	return nil, nil
}

func (r *fakePostRepo) SubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{id}
	for i := 0; i < len(ids); i++ {
		for _, p := range r.s.posts {
			if p.ParentId != nil && *p.ParentId == ids[i] {
				ids = append(ids, p.Id)
			}
		}
	}
	return ids, nil
}

type fakePrescriptionRepo struct{ s *memStore }

func (r *fakePrescriptionRepo) Create(ctx context.Context, p *entity.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPrescription++
	p.Id = r.s.nextPrescription
	cp := *p
	r.s.prescriptions = append(r.s.prescriptions, &cp)
	return nil
}

func (r *fakePrescriptionRepo) Update(ctx context.Context, p *entity.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.prescriptions {
		if existing.Id == p.Id {
			cp := *p
			r.s.prescriptions[i] = &cp
		}
	}
	return nil
}

func (r *fakePrescriptionRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.prescriptions {
		if p.Id == id {
			r.s.prescriptions = append(r.s.prescriptions[:i], r.s.prescriptions[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakePrescriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prescription, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakePrescriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Prescription
outer:
	for _, p := range r.s.prescriptions {
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByUsername:
				if p.Username != sp.Username {
					continue outer
				}
			case specification.ByPrescriptionID:
				if p.Id != sp.ID {
					continue outer
				}
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeEmbeddingRepo struct{ s *memStore }

func (r *fakeEmbeddingRepo) Create(ctx context.Context, e *entity.PostEmbedding) error {
	return r.CreateBulk(ctx, []*entity.PostEmbedding{e})
}

func (r *fakeEmbeddingRepo) CreateBulk(ctx context.Context, es []*entity.PostEmbedding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.embeddings = append(r.s.embeddings, es...)
	return nil
}

func (r *fakeEmbeddingRepo) DeleteByPostIds(ctx context.Context, postIds []uuid.UUID) (int64, error) {
	drop := make(map[uuid.UUID]bool, len(postIds))
	for _, id := range postIds {
		drop[id] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	kept := r.s.embeddings[:0]
	for _, e := range r.s.embeddings {
		if drop[e.PostId] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.embeddings = kept
	return n, nil
}

func (r *fakeEmbeddingRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.embeddings = nil
	return nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.embeddings)), nil
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int) ([]*entity.ScoredPostEmbedding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.ScoredPostEmbedding, 0, len(r.s.embeddings))
	for _, e := range r.s.embeddings {
		var dot float64
		for i := range vec {
			if i < len(e.EmbeddingValue) {
				dot += float64(vec[i]) * float64(e.EmbeddingValue[i])
			}
		}
		out = append(out, &entity.ScoredPostEmbedding{PostEmbedding: *e, Similarity: dot})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// fakeIndexService records calls and serves canned search results.
type fakeIndexService struct {
	mu         sync.Mutex
	indexed    []*entity.Post
	retracted  []uuid.UUID
	hits       []vectorindex.Hit
	searchErr  error
	indexErr   error
	retractErr error
	lastK      int
}

func (f *fakeIndexService) IndexPost(ctx context.Context, post *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, post)
	return nil
}

func (f *fakeIndexService) RetractPosts(ctx context.Context, ids []uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retractErr != nil {
		return 0, f.retractErr
	}
	f.retracted = append(f.retracted, ids...)
	return len(ids), nil
}

func (f *fakeIndexService) Rebuild(ctx context.Context, progress vectorindex.Progress) (*dto.RebuildResponse, error) {
	return &dto.RebuildResponse{}, nil
}

func (f *fakeIndexService) RequestRebuild(ctx context.Context, requestedBy string) error {
	return nil
}

func (f *fakeIndexService) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastK = k
	return f.hits, f.searchErr
}

func (f *fakeIndexService) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	return &dto.IndexStatsResponse{}, nil
}

// recordingLLM captures the last prompt and options.
type recordingLLM struct {
	mu       sync.Mutex
	prompts  []string
	opts     *llm.Options
	response string
	err      error
	hadDeadline bool
}

func (l *recordingLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", nil
}

func (l *recordingLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	l.opts = llm.Apply(llm.Options{}, opts...)
	_, l.hadDeadline = ctx.Deadline()
	return l.response, l.err
}

func (l *recordingLLM) lastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func seedPost(s *memStore, text string, at time.Time, parent *uuid.UUID) *entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Post{Id: uuid.New(), Text: text, CreatedTime: at, ParentId: parent}
	s.posts = append(s.posts, p)
	return p
}
