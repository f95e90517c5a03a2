package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"study-deck/internal/adapter/extract"
	"study-deck/internal/adapter/storage"
	"study-deck/internal/cache"
	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/logger"
	"study-deck/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	maxTitleLength = 200
	untitledSet    = "Untitled set"
)

// ExtractorRegistry resolves the text extractor for a document kind.
type ExtractorRegistry interface {
	For(kind domain.DocumentKind) domain.TextExtractor
}

// FlashcardService turns uploads into flashcard sets and manages them.
type FlashcardService interface {
	CreateSetFromUpload(ctx context.Context, userID string, upload domain.Upload) (*dto.FlashcardSetResponse, error)
	ListSets(ctx context.Context, userID string) (*dto.FlashcardSetListResponse, error)
	GetSet(ctx context.Context, userID, setID string) (*dto.FlashcardSetResponse, error)
	RenameSet(ctx context.Context, userID, setID, title string) (*dto.FlashcardSetResponse, error)
	DeleteSet(ctx context.Context, userID, setID string) error
	// CheckSetAccess returns SET_NOT_FOUND unless the user owns the set.
	CheckSetAccess(ctx context.Context, userID, setID string) error
	// GetFlashcards returns the cards of a set the user owns, ordered by position.
	GetFlashcards(ctx context.Context, userID, setID string) ([]*domain.Flashcard, error)
}

type flashcardService struct {
	sets       domain.FlashcardSetRepository
	documents  domain.DocumentRepository
	profiles   domain.ProfileRepository
	profileSvc ProfileService
	tx         domain.TransactionManager
	store      domain.FileStore
	extractors ExtractorRegistry
	generator  domain.FlashcardGenerator
	embedder   domain.EmbeddingService
	cache      domain.Cache
	cfg        *config.Config

	group singleflight.Group
}

func NewFlashcardService(
	sets domain.FlashcardSetRepository,
	documents domain.DocumentRepository,
	profiles domain.ProfileRepository,
	profileSvc ProfileService,
	tx domain.TransactionManager,
	store domain.FileStore,
	extractors ExtractorRegistry,
	generator domain.FlashcardGenerator,
	embedder domain.EmbeddingService,
	c domain.Cache,
	cfg *config.Config,
) FlashcardService {
	return &flashcardService{
		sets:       sets,
		documents:  documents,
		profiles:   profiles,
		profileSvc: profileSvc,
		tx:         tx,
		store:      store,
		extractors: extractors,
		generator:  generator,
		embedder:   embedder,
		cache:      c,
		cfg:        cfg,
	}
}

func (s *flashcardService) CreateSetFromUpload(ctx context.Context, userID string, upload domain.Upload) (*dto.FlashcardSetResponse, error) {
	log := logger.Get().With(zap.String("userID", userID), zap.String("file", upload.FileName))

	profile, err := s.profileSvc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	freeLimit := s.cfg.Plans.FreeUploadLimit
	if !profile.CanUpload(freeLimit) {
		return nil, domain.NewUploadLimitError(freeLimit)
	}

	if len(upload.Data) == 0 {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	if limit := s.cfg.Plans.MaxUploadBytes; limit > 0 && int64(len(upload.Data)) > limit {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("File is larger than %d bytes", limit)).
			WithContext("max_bytes", limit)
	}
	detected, err := extract.Detect(upload.Data)
	if err != nil {
		return nil, err
	}

	docID := util.NewULID()
	objectPath := storage.ObjectPath(userID, docID, upload.FileName, detected.Extension)
	bucket := s.cfg.Supabase.DocumentBucket
	if err := s.store.Upload(ctx, bucket, objectPath, detected.ContentType, upload.Data); err != nil {
		log.Error("Failed to store uploaded document", zap.Error(err))
		return nil, domain.NewStorageError(err)
	}
	stored := true
	defer func() {
		if stored {
			s.removeObject(ctx, bucket, objectPath)
		}
	}()

	drafts, err := s.generateDrafts(ctx, detected, upload.Data)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:          docID,
		OwnerID:     userID,
		FileName:    path.Base(upload.FileName),
		ContentType: detected.ContentType,
		Kind:        detected.Kind,
		StoragePath: objectPath,
		SizeBytes:   int64(len(upload.Data)),
		Status:      domain.DocumentProcessed,
	}
	set := &domain.FlashcardSet{
		ID:               util.NewULID(),
		OwnerID:          userID,
		Title:            setTitle(upload.Title, upload.FileName),
		SourceDocumentID: docID,
		CardCount:        len(drafts),
	}
	cards := make([]*domain.Flashcard, 0, len(drafts))
	for i, d := range drafts {
		cards = append(cards, &domain.Flashcard{
			ID:       util.NewULID(),
			SetID:    set.ID,
			Question: d.Question,
			Answer:   d.Answer,
			Position: i,
		})
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.profiles.ConsumeUpload(txCtx, userID, freeLimit)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewUploadLimitError(freeLimit)
		}
		if err := s.documents.CreateDocument(txCtx, doc); err != nil {
			return err
		}
		if err := s.sets.CreateSet(txCtx, set); err != nil {
			return err
		}
		return s.sets.InsertFlashcards(txCtx, cards)
	})
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		log.Error("Failed to save flashcard set", zap.Error(err))
		return nil, domain.NewInternalError("Failed to save flashcard set", err)
	}
	stored = false

	set.Cards = cards
	s.profileSvc.Invalidate(ctx, userID)
	setCachedJSON(ctx, s.cache, cache.FlashcardsKey(set.ID), cards, s.cfg.CacheTTLs.Flashcards)

	log.Info("Created flashcard set",
		zap.String("setID", set.ID),
		zap.String("kind", string(detected.Kind)),
		zap.Int("cards", len(cards)))
	resp := toSetResponse(set, cards)
	return &resp, nil
}

// generateDrafts sends an image in one multimodal call, or extracts text and
// generates cards chunk by chunk. Failed chunks are skipped.
func (s *flashcardService) generateDrafts(ctx context.Context, detected extract.DetectedFile, data []byte) ([]domain.CardDraft, error) {
	perChunk := s.cfg.LLM.CardsPerChunk

	if detected.Kind == domain.DocumentKindImage {
		drafts, err := s.generator.GenerateFromImage(ctx, detected.ContentType, data, perChunk)
		if err != nil {
			return nil, domain.NewLLMServiceError(err)
		}
		return s.finalizeDrafts(ctx, drafts)
	}

	extractor := s.extractors.For(detected.Kind)
	if extractor == nil {
		return nil, domain.NewUnsupportedFileError(detected.ContentType)
	}
	text, err := extractor.ExtractText(ctx, data)
	if err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, "Could not read text from the document", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewInvalidInputError("Document contains no extractable text")
	}

	chunks := extract.ChunkText(text, s.cfg.LLM.ChunkSize)
	if limit := s.cfg.LLM.MaxChunks; limit > 0 && len(chunks) > limit {
		logger.Get().Info("Document truncated for generation", zap.Int("chunks", len(chunks)), zap.Int("used", limit))
		chunks = chunks[:limit]
	}

	results := make([][]domain.CardDraft, len(chunks))
	errs := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.LLM.MaxConcurrency))
	for i, chunk := range chunks {
		g.Go(func() error {
			drafts, err := s.generator.GenerateFromText(gctx, chunk, perChunk)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Get().Warn("Skipping chunk after generation failure", zap.Int("chunk", i), zap.Error(err))
				errs[i] = err
				return nil
			}
			results[i] = drafts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewLLMServiceError(err)
	}
	var all []domain.CardDraft
	failed := 0
	for i, r := range results {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, r...)
	}
	if failed == len(chunks) {
		return nil, domain.NewLLMServiceError(errors.Join(errs...))
	}
	return s.finalizeDrafts(ctx, all)
}

func (s *flashcardService) finalizeDrafts(ctx context.Context, drafts []domain.CardDraft) ([]domain.CardDraft, error) {
	drafts = domain.NormalizeDrafts(drafts)
	if len(drafts) == 0 {
		return nil, domain.NewLLMServiceError(errors.New("no flashcards could be generated from the document"))
	}
	return s.filterNearDuplicates(ctx, drafts), nil
}

func (s *flashcardService) ListSets(ctx context.Context, userID string) (*dto.FlashcardSetListResponse, error) {
	sets, err := s.sets.ListSetsByOwner(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list flashcard sets", err)
	}
	resp := &dto.FlashcardSetListResponse{Sets: make([]dto.FlashcardSetResponse, 0, len(sets))}
	for _, set := range sets {
		resp.Sets = append(resp.Sets, toSetResponse(set, nil))
	}
	return resp, nil
}

func (s *flashcardService) GetSet(ctx context.Context, userID, setID string) (*dto.FlashcardSetResponse, error) {
	set, err := s.loadOwnedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cachedFlashcards(ctx, setID)
	if err != nil {
		return nil, err
	}
	resp := toSetResponse(set, cards)
	return &resp, nil
}

func (s *flashcardService) RenameSet(ctx context.Context, userID, setID, title string) (*dto.FlashcardSetResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("title")}
	}
	if n := utf8.RuneCountInString(title); n > maxTitleLength {
		return nil, domain.ValidationErrors{domain.NewOutOfRangeError("title", n, 1, maxTitleLength)}
	}

	set, err := s.loadOwnedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if err := s.sets.UpdateSetTitle(ctx, setID, title); err != nil {
		if domain.HasCode(err, domain.CodeSetNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to rename flashcard set", err)
	}
	set.Title = title
	resp := toSetResponse(set, nil)
	return &resp, nil
}

func (s *flashcardService) DeleteSet(ctx context.Context, userID, setID string) error {
	set, err := s.loadOwnedSet(ctx, userID, setID)
	if err != nil {
		return err
	}

	var doc *domain.Document
	if set.SourceDocumentID != "" {
		if doc, err = s.documents.GetDocumentByID(ctx, set.SourceDocumentID); err != nil {
			return domain.NewInternalError("Failed to load source document", err)
		}
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sets.DeleteSet(txCtx, setID); err != nil {
			return err
		}
		if doc != nil {
			return s.documents.DeleteDocument(txCtx, doc.ID)
		}
		return nil
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeSetNotFound) {
			return err
		}
		return domain.NewInternalError("Failed to delete flashcard set", err)
	}

	invalidateCached(ctx, s.cache, cache.FlashcardsKey(setID))
	if doc != nil {
		s.removeObject(ctx, s.cfg.Supabase.DocumentBucket, doc.StoragePath)
	}
	logger.Get().Info("Deleted flashcard set", zap.String("userID", userID), zap.String("setID", setID))
	return nil
}

func (s *flashcardService) CheckSetAccess(ctx context.Context, userID, setID string) error {
	_, err := s.loadOwnedSet(ctx, userID, setID)
	return err
}

func (s *flashcardService) GetFlashcards(ctx context.Context, userID, setID string) ([]*domain.Flashcard, error) {
	if _, err := s.loadOwnedSet(ctx, userID, setID); err != nil {
		return nil, err
	}
	return s.cachedFlashcards(ctx, setID)
}

// cachedFlashcards reads through the cache. Concurrent misses for one set share a
// single database query.
func (s *flashcardService) cachedFlashcards(ctx context.Context, setID string) ([]*domain.Flashcard, error) {
	key := cache.FlashcardsKey(setID)
	var cards []*domain.Flashcard
	if getCachedJSON(ctx, s.cache, key, &cards) {
		return cards, nil
	}

	v, err, _ := s.group.Do(setID, func() (interface{}, error) {
		cards, err := s.sets.GetFlashcardsBySetID(ctx, setID)
		if err != nil {
			return nil, err
		}
		setCachedJSON(ctx, s.cache, key, cards, s.cfg.CacheTTLs.Flashcards)
		return cards, nil
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to load flashcards", err)
	}
	return v.([]*domain.Flashcard), nil
}

// loadOwnedSet hides sets owned by someone else behind SET_NOT_FOUND.
func (s *flashcardService) loadOwnedSet(ctx context.Context, userID, setID string) (*domain.FlashcardSet, error) {
	set, err := s.sets.GetSetByID(ctx, setID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load flashcard set", err)
	}
	if set == nil || set.OwnerID != userID {
		return nil, domain.NewSetNotFoundError(setID)
	}
	return set, nil
}

func (s *flashcardService) removeObject(ctx context.Context, bucket, objectPath string) {
	if err := s.store.Remove(context.WithoutCancel(ctx), bucket, objectPath); err != nil {
		logger.Get().Warn("Failed to remove stored object", zap.String("path", objectPath), zap.Error(err))
	}
}

func setTitle(title, fileName string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
		title = strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))
	}
	if title == "" || title == "." || title == "/" {
		return untitledSet
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}
	return title
}

func toSetResponse(set *domain.FlashcardSet, cards []*domain.Flashcard) dto.FlashcardSetResponse {
	resp := dto.FlashcardSetResponse{
		ID:               set.ID,
		Title:            set.Title,
		CardCount:        set.CardCount,
		SourceDocumentID: set.SourceDocumentID,
		CreatedAt:        set.CreatedAt,
		UpdatedAt:        set.UpdatedAt,
	}
	if cards != nil {
		resp.Flashcards = make([]dto.FlashcardResponse, 0, len(cards))
		for _, c := range cards {
			resp.Flashcards = append(resp.Flashcards, dto.FlashcardResponse{
				ID:       c.ID,
				Question: c.Question,
				Answer:   c.Answer,
				Position: c.Position,
			})
		}
	}
	return resp
}
