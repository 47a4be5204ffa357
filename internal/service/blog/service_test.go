package blog

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type fakeBlogRepo struct {
	posts map[uuid.UUID]*models.BlogPost
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{posts: make(map[uuid.UUID]*models.BlogPost)}
}

func (f *fakeBlogRepo) CreatePost(_ context.Context, post *models.BlogPost) (uuid.UUID, error) {
	copied := *post
	copied.ID = uuid.New()
	f.posts[copied.ID] = &copied
	return copied.ID, nil
}

func (f *fakeBlogRepo) PostByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, app_errors.ErrBlogNotFound
	}
	copied := *post
	return &copied, nil
}

func (f *fakeBlogRepo) ListByExpert(_ context.Context, expertID uuid.UUID) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for _, p := range f.posts {
		if p.ExpertID == expertID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeBlogRepo) ListByStatus(_ context.Context, status string) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for _, p := range f.posts {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeExpertRepo struct {
	expert *models.Expert
}

func (f *fakeExpertRepo) ExpertByUserID(_ context.Context, userID uuid.UUID) (*models.Expert, error) {
	if f.expert == nil || f.expert.UserID != userID {
		return nil, app_errors.ErrExpertNotFound
	}
	return f.expert, nil
}

type fakeFileStore struct {
	uploaded []string
}

func (f *fakeFileStore) UploadAttachment(_ context.Context, _ uuid.UUID, kind, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	key := kind + "/" + filename
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeFileStore) AttachmentURL(_ context.Context, objectKey string) (string, error) {
	return "https://files.example/" + objectKey, nil
}

func approvedExpert() *models.Expert {
	return &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
}

func TestCreateWithCover(t *testing.T) {
	expert := approvedExpert()
	repo := newFakeBlogRepo()
	files := &fakeFileStore{}
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, files)

	cover := &CoverUpload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        128,
		Reader:      strings.NewReader("png"),
	}
	id, err := svc.Create(context.Background(), expert.UserID, "Pricing your sessions", "body text", cover)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	post := repo.posts[id]
	if post.Status != models.ApprovalPending {
		t.Fatalf("status: got %q, want pending", post.Status)
	}
	if post.CoverURL == "" {
		t.Fatalf("cover URL not set")
	}
	if len(files.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(files.uploaded))
	}
}

func TestCreateRejectsOversizedCover(t *testing.T) {
	expert := approvedExpert()
	svc := NewService(logger.New("test"), newFakeBlogRepo(), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	cover := &CoverUpload{Filename: "huge.png", Size: maxCoverSize + 1, Reader: strings.NewReader("")}
	if _, err := svc.Create(context.Background(), expert.UserID, "Title", "body", cover); err != app_errors.ErrFileSize {
		t.Fatalf("got %v, want ErrFileSize", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	expert := approvedExpert()
	svc := NewService(logger.New("test"), newFakeBlogRepo(), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if _, err := svc.Create(context.Background(), expert.UserID, "   ", "body", nil); err != app_errors.ErrTitleRequired {
		t.Fatalf("got %v, want ErrTitleRequired", err)
	}
}

func TestCreateRequiresApprovedExpert(t *testing.T) {
	expert := approvedExpert()
	expert.Status = models.ApprovalPending
	svc := NewService(logger.New("test"), newFakeBlogRepo(), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if _, err := svc.Create(context.Background(), expert.UserID, "Title", "body", nil); err != app_errors.ErrExpertNotApproved {
		t.Fatalf("got %v, want ErrExpertNotApproved", err)
	}
}

func TestPostHidesUnapproved(t *testing.T) {
	expert := approvedExpert()
	repo := newFakeBlogRepo()
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	id, err := svc.Create(context.Background(), expert.UserID, "Draft", "body", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Post(context.Background(), id); err != app_errors.ErrBlogNotFound {
		t.Fatalf("pending post: got %v, want ErrBlogNotFound", err)
	}

	repo.posts[id].Status = models.ApprovalApproved
	post, err := svc.Post(context.Background(), id)
	if err != nil {
		t.Fatalf("approved post: %v", err)
	}
	if post.Title != "Draft" {
		t.Fatalf("unexpected post: %+v", post)
	}

	published, err := svc.Published(context.Background())
	if err != nil {
		t.Fatalf("Published: %v", err)
	}
	if len(published) != 1 {
		t.Fatalf("published: got %d posts, want 1", len(published))
	}
}
