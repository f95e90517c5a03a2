package service

import (
	"context"
	"fmt"

	"study-deck/internal/domain"
	"study-deck/internal/logger"
	"study-deck/internal/util"

	"go.uber.org/zap"
)

// dropNearDuplicates removes drafts whose question vector is at least
// threshold-similar to an earlier kept draft. vectors[i] belongs to drafts[i].
func dropNearDuplicates(drafts []domain.CardDraft, vectors [][]float32, threshold float64) ([]domain.CardDraft, error) {
	if len(vectors) != len(drafts) {
		return nil, fmt.Errorf("got %d vectors for %d drafts", len(vectors), len(drafts))
	}
	out := make([]domain.CardDraft, 0, len(drafts))
	kept := make([][]float32, 0, len(drafts))
	for i, d := range drafts {
		dup := false
		for _, k := range kept {
			sim, err := util.CosineSimilarity(vectors[i], k)
			if err != nil {
				return nil, err
			}
			if sim >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, vectors[i])
		out = append(out, d)
	}
	return out, nil
}

// filterNearDuplicates is best effort: on any embedding failure the drafts are kept as is.
func (s *flashcardService) filterNearDuplicates(ctx context.Context, drafts []domain.CardDraft) []domain.CardDraft {
	if s.embedder == nil || len(drafts) < 2 {
		return drafts
	}
	questions := make([]string, len(drafts))
	for i, d := range drafts {
		questions[i] = d.Question
	}
	vectors, err := s.embedder.Embed(ctx, questions)
	if err != nil {
		logger.Get().Warn("Skipping near-duplicate filter", zap.Error(err))
		return drafts
	}
	filtered, err := dropNearDuplicates(drafts, vectors, s.cfg.LLM.Embedding.Threshold)
	if err != nil {
		logger.Get().Warn("Skipping near-duplicate filter", zap.Error(err))
		return drafts
	}
	if removed := len(drafts) - len(filtered); removed > 0 {
		logger.Get().Debug("Dropped near-duplicate flashcards", zap.Int("removed", removed))
	}
	return filtered
}
