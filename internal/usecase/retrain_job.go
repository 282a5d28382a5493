package usecase

import (
	"context"
	"errors"

	"WalkSim/pkg/queue"
)

// JobTypeRetrain is the queue message type for a single-symbol retrain.
const JobTypeRetrain = "model.retrain"

// RetrainPayload is the queued retrain request.
type RetrainPayload struct {
	Symbol string `json:"symbol"`
}

// RetrainJob runs queued retrains.
type RetrainJob struct {
	retrainer *Retrainer
}

func NewRetrainJob(r *Retrainer) *RetrainJob {
	return &RetrainJob{retrainer: r}
}

func (j *RetrainJob) Name() string { return "retrain-model" }

func (j *RetrainJob) Type() string { return JobTypeRetrain }

func (j *RetrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return err
	}
	_, err = j.retrainer.RetrainSymbol(ctx, p.Symbol)
	if errors.Is(err, ErrRetrainInProgress) {
		return nil
	}
	return err
}

var _ queue.Job = (*RetrainJob)(nil)
