package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
)

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.Document
}

func newFakeDocRepo(docs ...*domain.Document) *fakeDocRepo {
	repo := &fakeDocRepo{docs: make(map[string]*domain.Document)}
	for _, d := range docs {
		cp := *d
		repo.docs[d.ID] = &cp
	}
	return repo
}

func (r *fakeDocRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocRepo) List(_ context.Context, _, _ int) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDocRepo) ClaimProcessing(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if doc.Status != domain.StatusUploaded {
		return domain.WrapError(domain.ErrInvalidStatus, "claim processing",
			errors.New("document is not in uploaded status"))
	}
	doc.Status = domain.StatusProcessing
	return nil
}

func (r *fakeDocRepo) SetProcessed(_ context.Context, id, contentText, templatePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	doc.Status = domain.StatusProcessed
	doc.ContentText = contentText
	doc.TemplatePath = templatePath
	return nil
}

func (r *fakeDocRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	doc.Status = status
	doc.Error = errMessage
	return nil
}

func (r *fakeDocRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

type fakePlaceholderStore struct {
	mu    sync.Mutex
	items []domain.Placeholder
}

func (s *fakePlaceholderStore) CreateBulk(_ context.Context, placeholders []domain.Placeholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, placeholders...)
	return nil
}

func (s *fakePlaceholderStore) ListByDocument(_ context.Context, documentID string) ([]domain.Placeholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Placeholder
	for _, p := range s.items {
		if p.DocumentID == documentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePlaceholderStore) ListUnfilled(_ context.Context, documentID string) ([]domain.Placeholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Placeholder
	for _, p := range s.items {
		if p.DocumentID == documentID && !p.IsFilled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePlaceholderStore) GetByID(_ context.Context, id string) (*domain.Placeholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlaceholderNotFound
}

func (s *fakePlaceholderStore) Fill(_ context.Context, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			v := value
			s.items[i].FilledValue = &v
			s.items[i].IsFilled = true
			return nil
		}
	}
	return domain.ErrPlaceholderNotFound
}

func (s *fakePlaceholderStore) Progress(_ context.Context, documentID string) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var progress domain.Progress
	for _, p := range s.items {
		if p.DocumentID != documentID {
			continue
		}
		progress.Total++
		if p.IsFilled {
			progress.Filled++
		}
	}
	return progress, nil
}

type fakeConvStore struct {
	mu    sync.Mutex
	convs map[string]*domain.Conversation
	turns []domain.Turn
	seq   int
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{convs: make(map[string]*domain.Conversation)}
}

func (s *fakeConvStore) GetOrCreateActive(_ context.Context, documentID, sessionID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.DocumentID == documentID && c.SessionID == sessionID && c.Status == domain.ConversationActive {
			cp := *c
			return &cp, nil
		}
	}
	s.seq++
	conv := &domain.Conversation{
		ID:         "conv-" + sessionID,
		DocumentID: documentID,
		SessionID:  sessionID,
		Status:     domain.ConversationActive,
	}
	s.convs[conv.ID] = conv
	cp := *conv
	return &cp, nil
}

func (s *fakeConvStore) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *conv
	return &cp, nil
}

func (s *fakeConvStore) SetCurrentPlaceholder(_ context.Context, conversationID string, placeholderID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	conv.CurrentPlaceholderID = placeholderID
	return nil
}

func (s *fakeConvStore) Complete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	conv.Status = domain.ConversationCompleted
	conv.CurrentPlaceholderID = nil
	return nil
}

func (s *fakeConvStore) AppendTurn(_ context.Context, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	return nil
}

func (s *fakeConvStore) ListTurns(_ context.Context, conversationID string) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Turn
	for _, t := range s.turns {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = b
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) Abs(key string) string {
	return filepath.Join("/store", key)
}

type fakeQueue struct {
	mu        sync.Mutex
	published []string
}

func (q *fakeQueue) PublishDocumentUploaded(_ context.Context, documentID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentUploaded(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeParagraph struct {
	runs []string
}

func (p *fakeParagraph) RunTexts() []string         { return p.runs }
func (p *fakeParagraph) SetRunTexts(texts []string) { p.runs = texts }

type fakeDocFile struct {
	paragraphs []*fakeParagraph
	savedTo    string
}

func (f *fakeDocFile) Paragraphs() []ports.ParagraphHandle {
	out := make([]ports.ParagraphHandle, len(f.paragraphs))
	for i, p := range f.paragraphs {
		out[i] = p
	}
	return out
}

func (f *fakeDocFile) SaveAs(path string) error {
	f.savedTo = path
	return nil
}

func (f *fakeDocFile) Close() error { return nil }

type fakeDocIO struct {
	file    *fakeDocFile
	openErr error
}

func (d *fakeDocIO) Open(_ context.Context, _ string) (ports.DocumentFile, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.file, nil
}

// fakeCapability replays a scripted sequence of directives, one per
// NextDirective call.
type fakeCapability struct {
	mu         sync.Mutex
	directives []domain.Directive
	err        error
	intro      string
	introErr   error
	calls      int
}

func (c *fakeCapability) NextDirective(_ context.Context, _ ports.DialogueContext) (domain.Directive, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return domain.Directive{}, c.err
	}
	if len(c.directives) == 0 {
		return domain.Directive{}, domain.ErrCapability
	}
	d := c.directives[0]
	c.directives = c.directives[1:]
	return d, nil
}

func (c *fakeCapability) Introduce(_ context.Context, dc ports.DialogueContext) (string, error) {
	if c.introErr != nil {
		return "", c.introErr
	}
	if c.intro != "" {
		return c.intro, nil
	}
	return "Next up: " + dc.Placeholder.RawText, nil
}

type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	template string
	output   string
	values   map[string]string
}

func (r *fakeRenderer) Render(_ context.Context, templatePath string, values map[string]string, outputPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.template = templatePath
	r.output = outputPath
	r.values = values
	return nil
}
