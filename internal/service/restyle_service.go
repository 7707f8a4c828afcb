package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"kidtales-server/internal/messaging"
	"kidtales-server/internal/models"
	"kidtales-server/internal/replicate"
	"kidtales-server/internal/repository"
	"kidtales-server/internal/storage"
	"kidtales-server/internal/utils"
)

// Лиза рестайла должна переживать самый долгий прогон: N страниц по
// (лимит опроса + релокация) каждая.
const restyleLockTTL = 15 * time.Minute

// RestyleService перегенерирует все иллюстрации истории в новом стиле,
// сохраняя визуальную идентичность персонажа.
type RestyleService interface {
	RestyleStory(ctx context.Context, storyID, newStyle string) (*models.RestyleResponse, error)
}

type restyleServiceImpl struct {
	storyRepo     repository.StoryRepository
	characterRepo repository.CharacterRepository
	storyCharRepo repository.StoryCharacterRepository
	pageGenRepo   repository.PageGenerationRepository
	lockRepo      repository.StoryLockRepository
	imageClient   replicate.Client
	relocator     storage.Relocator
	publisher     messaging.StoryEventPublisher
	logger        *zap.Logger
}

var _ RestyleService = (*restyleServiceImpl)(nil)

// NewRestyleService создает сервис рестайла.
func NewRestyleService(
	storyRepo repository.StoryRepository,
	characterRepo repository.CharacterRepository,
	storyCharRepo repository.StoryCharacterRepository,
	pageGenRepo repository.PageGenerationRepository,
	lockRepo repository.StoryLockRepository,
	imageClient replicate.Client,
	relocator storage.Relocator,
	publisher messaging.StoryEventPublisher,
	logger *zap.Logger,
) RestyleService {
	return &restyleServiceImpl{
		storyRepo:     storyRepo,
		characterRepo: characterRepo,
		storyCharRepo: storyCharRepo,
		pageGenRepo:   pageGenRepo,
		lockRepo:      lockRepo,
		imageClient:   imageClient,
		relocator:     relocator,
		publisher:     publisher,
		logger:        logger.Named("RestyleService"),
	}
}

func (s *restyleServiceImpl) RestyleStory(ctx context.Context, storyID, newStyle string) (*models.RestyleResponse, error) {
	storyID = strings.TrimSpace(storyID)
	newStyle = strings.TrimSpace(newStyle)
	if storyID == "" || newStyle == "" {
		return nil, fmt.Errorf("%w: storyId и newStyle обязательны", models.ErrInvalidRequest)
	}

	log := s.logger.With(zap.String("story_id", storyID), zap.String("new_style", newStyle))

	// Advisory-блокировка: два конкурентных рестайла одной истории не
	// должны чередовать записи. Потерянная (не снятая) лиза истекает по TTL.
	acquired, err := s.lockRepo.AcquireRestyleLock(ctx, storyID, restyleLockTTL)
	if err != nil {
		return nil, fmt.Errorf("не удалось захватить лизу рестайла для истории %s: %w", storyID, err)
	}
	if !acquired {
		log.Warn("Рестайл уже выполняется для этой истории")
		return nil, models.ErrRestyleInProgress
	}
	defer func() {
		if relErr := s.lockRepo.ReleaseRestyleLock(context.WithoutCancel(ctx), storyID); relErr != nil {
			log.Error("Не удалось снять лизу рестайла", zap.Error(relErr))
		}
	}()

	story, err := s.storyRepo.GetByStoryID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	links, err := s.storyCharRepo.ListByStoryID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить связки персонажей истории %s: %w", storyID, err)
	}
	if len(links) == 0 {
		// Рестайл без персонажа запрещен: нечего держать консистентным.
		return nil, fmt.Errorf("%w: история %s не имеет привязанного персонажа", models.ErrMissingCharacterData, storyID)
	}

	// Первая связка - канонический источник consistency.
	character, err := s.characterRepo.GetByID(ctx, links[0].CharacterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: персонаж %d истории %s не найден", models.ErrMissingCharacterData, links[0].CharacterID, storyID)
		}
		return nil, fmt.Errorf("не удалось загрузить персонажа %d: %w", links[0].CharacterID, err)
	}

	output, err := story.ParseOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось распарсить вывод истории %s: %v", models.ErrRestyleFailed, storyID, err)
	}

	existing, err := s.pageGenRepo.ListByStoryID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить генерации страниц истории %s: %w", storyID, err)
	}
	oldImages := make(map[int]string, len(existing))
	for _, gen := range existing {
		oldImages[gen.PageIndex] = gen.ImageURL
	}

	promptData := models.CharacterPromptData{
		Name:         character.Name,
		Descriptors:  &character.Descriptors,
		PrimaryColor: character.PrimaryColor,
		Outfit:       character.Outfit,
	}
	negativePrompt := utils.BuildNegativePrompt(promptData)

	resp := &models.RestyleResponse{
		Success:            true,
		NewStyle:           newStyle,
		RestyledPages:      make([]models.RestyledPage, 0, len(output.Chapters)+1),
		UpdatedGenerations: make([]models.GenerationUpdate, 0, len(output.Chapters)+1),
	}

	log.Info("Запуск рестайла",
		zap.String("character", character.Name),
		zap.Int("chapters", len(output.Chapters)))

	// Обложка всегда обрабатывается первой.
	if output.CoverImage != "" {
		scene := utils.FormatCoverScenePrompt(output.CoverImage, output.Title, newStyle)
		clause := utils.BuildCharacterPrompt(promptData, newStyle, true)
		finalPrompt := utils.PrependCharacterClause(clause, scene)

		newURL, seed, err := s.renderAndPersistPage(ctx, story, character, 0, finalPrompt, negativePrompt, newStyle)
		if err != nil {
			log.Error("Рестайл обложки не удался", zap.Error(err))
			return nil, wrapRestyleFailure(err, storyID, 0)
		}

		if err := s.storyRepo.UpdateCoverImage(ctx, storyID, newURL); err != nil {
			return nil, wrapRestyleFailure(fmt.Errorf("не удалось обновить обложку: %w", err), storyID, 0)
		}

		oldCover := story.CoverImage
		if prev, ok := oldImages[0]; ok && oldCover == "" {
			oldCover = prev
		}
		resp.RestyledPages = append(resp.RestyledPages, models.RestyledPage{
			PageIndex: 0, OldImage: oldCover, NewImage: newURL,
		})
		resp.UpdatedGenerations = append(resp.UpdatedGenerations, models.GenerationUpdate{
			PageIndex: 0, NewImage: newURL, NewSeed: seed,
		})
	}

	// Главы в порядке возрастания индекса, строго последовательно: полный
	// цикл submit -> poll -> relocate -> persist страницы завершается до
	// начала следующей.
	for i, chapter := range output.Chapters {
		pageIndex := i + 1
		if chapter.ImagePrompt == "" {
			continue
		}

		scene := utils.FormatChapterScenePrompt(chapter.ImagePrompt, newStyle)
		clause := utils.BuildCharacterPrompt(promptData, newStyle, false)
		finalPrompt := utils.PrependCharacterClause(clause, scene)

		newURL, seed, err := s.renderAndPersistPage(ctx, story, character, pageIndex, finalPrompt, negativePrompt, newStyle)
		if err != nil {
			// Уже закоммиченные страницы остаются; компенсации нет.
			// Повторный запрос того же стиля безвредно перегенерирует их
			// и доделает остаток.
			log.Error("Рестайл страницы не удался, прерываем оставшиеся",
				zap.Int("page_index", pageIndex), zap.Error(err))
			return nil, wrapRestyleFailure(err, storyID, pageIndex)
		}

		oldImage := oldImages[pageIndex]
		if oldImage == "" {
			oldImage = chapter.ImageURL
		}
		resp.RestyledPages = append(resp.RestyledPages, models.RestyledPage{
			PageIndex: pageIndex, OldImage: oldImage, NewImage: newURL,
		})
		resp.UpdatedGenerations = append(resp.UpdatedGenerations, models.GenerationUpdate{
			PageIndex: pageIndex, NewImage: newURL, NewSeed: seed,
		})
	}

	if err := s.storyRepo.UpdateImageStyle(ctx, storyID, newStyle); err != nil {
		return nil, wrapRestyleFailure(fmt.Errorf("не удалось обновить стиль истории: %w", err), storyID, -1)
	}

	if s.publisher != nil {
		event := messaging.StoryEvent{
			Type:      messaging.EventStoryRestyled,
			StoryID:   storyID,
			UserEmail: story.UserEmail,
			Style:     newStyle,
		}
		if pubErr := s.publisher.PublishStoryEvent(ctx, event); pubErr != nil {
			// Основная операция прошла, ошибку публикации не возвращаем.
			log.Error("Не удалось опубликовать событие story.restyled", zap.Error(pubErr))
		}
	}

	resp.Message = fmt.Sprintf("Story restyled to %s (%d pages)", newStyle, len(resp.RestyledPages))
	log.Info("Рестайл завершен", zap.Int("pages", len(resp.RestyledPages)))
	return resp, nil
}

// renderAndPersistPage прогоняет одну страницу через провайдера и
// релокацию и апсертит ее запись генерации. Возвращает durable URL и seed.
func (s *restyleServiceImpl) renderAndPersistPage(
	ctx context.Context,
	story *models.StoryData,
	character *models.Character,
	pageIndex int,
	prompt, negativePrompt, style string,
) (string, string, error) {
	providerURL, err := s.imageClient.SubmitAndAwaitImage(ctx, prompt, negativePrompt)
	if err != nil {
		return "", "", err
	}

	durableURL, err := s.relocator.Relocate(ctx, providerURL)
	if err != nil {
		return "", "", err
	}

	seed := utils.GenerateDeterministicSeed(story.StoryID, character.ID, pageIndex)

	// Снапшот контекста персонажа на момент генерации, не живая ссылка.
	snapshot, err := json.Marshal(models.CharacterPromptContext{
		Name:        character.Name,
		Descriptors: &character.Descriptors,
		Style:       style,
	})
	if err != nil {
		return "", "", fmt.Errorf("не удалось сериализовать контекст персонажа: %w", err)
	}

	gen := &models.PageGeneration{
		StoryID:            story.StoryID,
		PageIndex:          pageIndex,
		ImageURL:           durableURL,
		Seed:               seed,
		NegativePrompt:     &negativePrompt,
		CharacterPromptCtx: snapshot,
		Style:              style,
	}
	if err := s.pageGenRepo.Upsert(ctx, gen); err != nil {
		return "", "", fmt.Errorf("не удалось сохранить генерацию страницы %d: %w", pageIndex, err)
	}

	return durableURL, seed, nil
}

// wrapRestyleFailure оборачивает ошибку пайплайна в ErrRestyleFailed,
// сохраняя исходную цепочку для errors.Is.
func wrapRestyleFailure(err error, storyID string, pageIndex int) error {
	if pageIndex >= 0 {
		return fmt.Errorf("%w: история %s, страница %d: %w", models.ErrRestyleFailed, storyID, pageIndex, err)
	}
	return fmt.Errorf("%w: история %s: %w", models.ErrRestyleFailed, storyID, err)
}
