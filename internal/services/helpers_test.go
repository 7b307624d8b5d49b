package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/alimgiray/bizscope/internal/repositories"
	"github.com/alimgiray/bizscope/internal/workers"
	"github.com/stretchr/testify/require"
)

// recordingQueue keeps submitted jobs so tests can run them synchronously
type recordingQueue struct {
	mu   sync.Mutex
	jobs []workers.Job
	err  error
}

func (q *recordingQueue) Submit(job workers.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) runAll(t *testing.T) {
	t.Helper()
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	for _, job := range jobs {
		_ = job.Run(context.Background())
	}
}

type fakeAnalyzer struct {
	analysis   *models.Analysis
	err        error
	section    json.RawMessage
	sectionErr error
	panics     bool

	// hook runs inside Generate before it returns
	hook func()

	sectionCalls []models.SectionKey
	hints        []string
}

func (a *fakeAnalyzer) Generate(ctx context.Context, name, description string) (*models.Analysis, error) {
	if a.panics {
		panic("analyzer exploded")
	}
	if a.hook != nil {
		a.hook()
	}
	if a.err != nil {
		return nil, a.err
	}
	if a.analysis != nil {
		return a.analysis, nil
	}
	analysis := models.NewAnalysisSkeleton(name, description)
	analysis.KeyFeatures = []string{"Booking", "Reviews"}
	analysis.MarketAnalysis.MarketSize = "$10B"
	return analysis, nil
}

func (a *fakeAnalyzer) GenerateSection(ctx context.Context, analysis *models.Analysis, key models.SectionKey, hint string) (json.RawMessage, error) {
	a.sectionCalls = append(a.sectionCalls, key)
	a.hints = append(a.hints, hint)
	if a.sectionErr != nil {
		return nil, a.sectionErr
	}
	return a.section, nil
}

type testEnv struct {
	service  *ProjectService
	repo     *repositories.ProjectRepository
	store    *repositories.FileDocumentStore
	queue    *recordingQueue
	analyzer *fakeAnalyzer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := repositories.NewFileDocumentStore(t.TempDir())
	require.NoError(t, err)

	repo := repositories.NewProjectRepository(store)
	queue := &recordingQueue{}
	analyzer := &fakeAnalyzer{}
	return &testEnv{
		service:  NewProjectService(repo, analyzer, queue, nil),
		repo:     repo,
		store:    store,
		queue:    queue,
		analyzer: analyzer,
	}
}

var errModelDown = errors.New("model unavailable")
