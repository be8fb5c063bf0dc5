package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"device-feedback-server/models"
)

// IncompleteFinder finds feedback with fewer associations than expected
type IncompleteFinder interface {
	FindIncomplete(ctx context.Context, expected int64) ([]models.IncompleteFeedback, error)
}

// QuestionCounter reports the current catalog size
type QuestionCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AssociationAuditJob periodically reports feedback rows left with a partial
// set of question associations. It only logs; nothing is repaired.
type AssociationAuditJob struct {
	feedback  IncompleteFinder
	questions QuestionCounter
	interval  time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewAssociationAuditJob(feedback IncompleteFinder, questions QuestionCounter, interval time.Duration) *AssociationAuditJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AssociationAuditJob{
		feedback:  feedback,
		questions: questions,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the audit loop
func (j *AssociationAuditJob) Start() {
	j.wg.Add(1)
	go j.run()
	log.Printf("🚀 Association audit job started (every %v)", j.interval)
}

// Stop ends the audit loop and waits for an in-flight run to finish
func (j *AssociationAuditJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
		log.Println("🛑 Association audit job stopped")
	})
}

func (j *AssociationAuditJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), j.interval)
			if _, err := j.RunOnce(ctx); err != nil {
				log.Printf("❌ Association audit failed: %v", err)
			}
			cancel()
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce audits against the current catalog size. Feedback created before
// questions were added also shows up here.
func (j *AssociationAuditJob) RunOnce(ctx context.Context) ([]models.IncompleteFeedback, error) {
	expected, err := j.questions.Count(ctx)
	if err != nil {
		return nil, err
	}
	if expected == 0 {
		return nil, nil
	}

	incomplete, err := j.feedback.FindIncomplete(ctx, expected)
	if err != nil {
		return nil, err
	}

	if len(incomplete) > 0 {
		log.Printf("⏰ Found %d feedback records with fewer than %d answers", len(incomplete), expected)
		for _, row := range incomplete {
			log.Printf("⚠️ Feedback %d has %d/%d associations", row.FeedbackID, row.AssociationCount, expected)
		}
	}
	return incomplete, nil
}
