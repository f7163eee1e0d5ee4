package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recruit-eval/internal/domain"
	"recruit-eval/internal/repository"
)

var ErrCompatibilityInvalidInput = errors.New("compatibility invalid input")

// CompatibilityService obtiene respuestas y perfil del proceso, ejecuta el
// pipeline de puntaje y guarda el resultado en cache.
type CompatibilityService struct {
	responses   repository.ResponseRepository
	processes   repository.ProcessRepository
	cache       ResultCache
	logger      *zap.Logger
	opts        ScoringOptions
	concurrency int
	observer    ScoringObserver
}

func NewCompatibilityService(
	responses repository.ResponseRepository,
	processes repository.ProcessRepository,
	cache ResultCache,
	logger *zap.Logger,
	opts ScoringOptions,
	concurrency int,
) *CompatibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &CompatibilityService{
		responses:   responses,
		processes:   processes,
		cache:       cache,
		logger:      logger,
		opts:        opts,
		concurrency: concurrency,
	}
}

// SetObserver registra un observador de metricas; nil lo desactiva.
func (s *CompatibilityService) SetObserver(observer ScoringObserver) {
	s.observer = observer
}

// EvaluatePayload calcula la compatibilidad de un payload ya cargado en memoria.
func (s *CompatibilityService) EvaluatePayload(responses []domain.OpinionResponse, profile domain.ProcessProfile, weightMap map[string]float64) (domain.CompatibilityResult, error) {
	opts := s.opts
	if len(weightMap) > 0 {
		opts.WeightMap = weightMap
	}
	result, err := Evaluate(responses, profile, opts)
	if err != nil {
		return result, err
	}
	s.logUnmatched(result, "")
	return result, nil
}

// EvaluateCandidate calcula la compatibilidad de un candidato con un proceso.
// Con domain.ErrNoCandidateData tambien devuelve el resultado centinela.
func (s *CompatibilityService) EvaluateCandidate(ctx context.Context, candidateID, processID string) (domain.CompatibilityResult, error) {
	candidateID = strings.TrimSpace(candidateID)
	processID = strings.TrimSpace(processID)
	if candidateID == "" || processID == "" {
		return domain.CompatibilityResult{}, ErrCompatibilityInvalidInput
	}

	return s.observedEvaluate(ctx, candidateID, processID, nil)
}

func (s *CompatibilityService) observedEvaluate(ctx context.Context, candidateID, processID string, profile *domain.ProcessProfile) (domain.CompatibilityResult, error) {
	start := time.Now()
	result, cached, err := s.evaluateCandidate(ctx, candidateID, processID, profile)
	if s.observer != nil {
		s.observer.RecordEvaluation(time.Since(start), evaluationOutcome(result, cached, err), result)
	}
	return result, err
}

func (s *CompatibilityService) loadProfile(ctx context.Context, processID string) (domain.ProcessProfile, error) {
	profile, err := s.processes.GetProfile(ctx, processID)
	if err != nil {
		return domain.ProcessProfile{}, fmt.Errorf("get process profile %s: %w", processID, err)
	}
	if len(profile.Targets) == 0 && len(profile.ExpectedProfile) == 0 {
		s.logger.Debug("process has no trait configuration, using candidate-only weighting",
			zap.String("process_id", processID),
			zap.NamedError("reason", domain.ErrNoProcessConfig),
		)
	}
	return profile, nil
}

// evaluateCandidate usa profile si viene cargado; si es nil lo lee del repositorio.
func (s *CompatibilityService) evaluateCandidate(ctx context.Context, candidateID, processID string, profile *domain.ProcessProfile) (domain.CompatibilityResult, bool, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, candidateID, processID)
		if err != nil {
			s.logger.Warn("compatibility cache get failed", zap.Error(err), zap.String("candidate_id", candidateID))
		} else if ok {
			return cached, true, nil
		}
	}

	if profile == nil {
		loaded, err := s.loadProfile(ctx, processID)
		if err != nil {
			return domain.CompatibilityResult{}, false, err
		}
		profile = &loaded
	}

	responses, err := s.responses.FindOpinionResponses(ctx, candidateID)
	if err != nil {
		return domain.CompatibilityResult{}, false, fmt.Errorf("find responses for candidate %s: %w", candidateID, err)
	}
	weights, err := s.responses.FindOptionWeights(ctx, candidateID)
	if err != nil {
		return domain.CompatibilityResult{}, false, fmt.Errorf("find option weights for candidate %s: %w", candidateID, err)
	}

	opts := s.opts
	opts.WeightMap = weights
	result, err := Evaluate(responses, *profile, opts)
	if err != nil {
		return result, false, err
	}
	s.logUnmatched(result, candidateID)

	if s.cache != nil {
		if err := s.cache.Set(ctx, candidateID, processID, result); err != nil {
			s.logger.Warn("compatibility cache set failed", zap.Error(err), zap.String("candidate_id", candidateID))
		}
	}
	return result, false, nil
}

// RankCandidates evalua a todos los candidatos del proceso y los ordena por
// puntaje descendente; los que no tienen datos quedan al final.
func (s *CompatibilityService) RankCandidates(ctx context.Context, processID string) ([]domain.CandidateRanking, error) {
	processID = strings.TrimSpace(processID)
	if processID == "" {
		return nil, ErrCompatibilityInvalidInput
	}
	ids, err := s.processes.ListCandidateIDs(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("list candidates for process %s: %w", processID, err)
	}
	if len(ids) == 0 {
		return []domain.CandidateRanking{}, nil
	}
	profile, err := s.loadProfile(ctx, processID)
	if err != nil {
		return nil, err
	}

	rankings := make([]domain.CandidateRanking, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			result, err := s.observedEvaluate(gctx, strings.TrimSpace(id), processID, &profile)
			if err != nil && !errors.Is(err, domain.ErrNoCandidateData) {
				return fmt.Errorf("candidate %s: %w", id, err)
			}
			rankings[i] = domain.CandidateRanking{CandidateID: id, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.Result.InsufficientData() != b.Result.InsufficientData() {
			return !a.Result.InsufficientData()
		}
		if a.Result.OverallScore != b.Result.OverallScore {
			return a.Result.OverallScore > b.Result.OverallScore
		}
		return a.CandidateID < b.CandidateID
	})

	s.logger.Info("ranked candidates", zap.String("process_id", processID), zap.Int("candidates", len(rankings)))
	return rankings, nil
}

func (s *CompatibilityService) logUnmatched(result domain.CompatibilityResult, candidateID string) {
	for _, group := range result.TraitGroups {
		for _, t := range group.Traits {
			if t.Source != domain.MergeSourceCandidateOnly {
				continue
			}
			s.logger.Debug("candidate trait not in process profile",
				zap.String("candidate_id", candidateID),
				zap.String("trait", t.Name),
				zap.String("group_id", group.GroupID),
			)
		}
	}
}
