package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidtales-server/internal/ai"
	"kidtales-server/internal/messaging"
	"kidtales-server/internal/models"
	"kidtales-server/internal/replicate"
	"kidtales-server/internal/repository"
	"kidtales-server/internal/storage"
	"kidtales-server/internal/utils"
)

// StoryService - полный пайплайн создания истории: текст через AI,
// иллюстрации через image-провайдера, персистенция и событие жизненного
// цикла.
type StoryService interface {
	CreateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryData, error)
	GetStory(ctx context.Context, storyID string) (*models.StoryData, error)
}

type storyServiceImpl struct {
	storyRepo     repository.StoryRepository
	characterRepo repository.CharacterRepository
	storyCharRepo repository.StoryCharacterRepository
	pageGenRepo   repository.PageGenerationRepository
	textClient    ai.StoryTextClient
	imageClient   replicate.Client
	relocator     storage.Relocator
	publisher     messaging.StoryEventPublisher
	logger        *zap.Logger
}

var _ StoryService = (*storyServiceImpl)(nil)

// NewStoryService создает сервис историй.
func NewStoryService(
	storyRepo repository.StoryRepository,
	characterRepo repository.CharacterRepository,
	storyCharRepo repository.StoryCharacterRepository,
	pageGenRepo repository.PageGenerationRepository,
	textClient ai.StoryTextClient,
	imageClient replicate.Client,
	relocator storage.Relocator,
	publisher messaging.StoryEventPublisher,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:     storyRepo,
		characterRepo: characterRepo,
		storyCharRepo: storyCharRepo,
		pageGenRepo:   pageGenRepo,
		textClient:    textClient,
		imageClient:   imageClient,
		relocator:     relocator,
		publisher:     publisher,
		logger:        logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) GetStory(ctx context.Context, storyID string) (*models.StoryData, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, fmt.Errorf("%w: storyId обязателен", models.ErrInvalidRequest)
	}
	return s.storyRepo.GetByStoryID(ctx, storyID)
}

func (s *storyServiceImpl) CreateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryData, error) {
	if strings.TrimSpace(req.StorySubject) == "" ||
		strings.TrimSpace(req.AgeGroup) == "" ||
		strings.TrimSpace(req.ImageStyle) == "" ||
		strings.TrimSpace(req.UserEmail) == "" {
		return nil, fmt.Errorf("%w: storySubject, ageGroup, imageStyle и userEmail обязательны", models.ErrInvalidRequest)
	}

	storyID := uuid.NewString()
	log := s.logger.With(zap.String("story_id", storyID), zap.String("user_email", req.UserEmail))

	// Персонаж разрешается до генерации текста: валидация должна отказать
	// раньше, чем мы потратим вызов AI.
	var character *models.Character
	if req.EnforceConsistency {
		if req.CharacterData == nil {
			return nil, fmt.Errorf("%w: enforceConsistency требует characterData", models.ErrMissingCharacterData)
		}
		if !utils.ValidateCharacterData(*req.CharacterData) {
			return nil, fmt.Errorf("%w: имя персонажа должно быть 1-50 символов", models.ErrCharacterValidation)
		}

		var err error
		character, err = s.resolveCharacter(ctx, req.UserEmail, *req.CharacterData)
		if err != nil {
			return nil, err
		}
		log.Info("Персонаж разрешен", zap.Int64("character_id", character.ID), zap.String("name", character.Name))
	}

	output, usage, err := s.textClient.GenerateStory(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Info("Текст истории сгенерирован",
		zap.String("title", output.Title),
		zap.Int("chapters", len(output.Chapters)),
		zap.Int("total_tokens", usage.TotalTokens))

	var promptData models.CharacterPromptData
	var negativePrompt string
	var characterID int64
	if character != nil {
		characterID = character.ID
		promptData = models.CharacterPromptData{
			Name:         character.Name,
			Descriptors:  &character.Descriptors,
			PrimaryColor: character.PrimaryColor,
			Outfit:       character.Outfit,
		}
		negativePrompt = utils.BuildNegativePrompt(promptData)
	}

	// Обложка (страница 0), затем главы по возрастанию - строго
	// последовательно, как и при рестайле.
	coverURL := ""
	if output.CoverImage != "" {
		scene := utils.FormatCoverScenePrompt(output.CoverImage, output.Title, req.ImageStyle)
		finalPrompt := scene
		if character != nil {
			finalPrompt = utils.PrependCharacterClause(utils.BuildCharacterPrompt(promptData, req.ImageStyle, true), scene)
		}
		coverURL, err = s.renderPage(ctx, storyID, characterID, 0, finalPrompt, negativePrompt, req.ImageStyle, character)
		if err != nil {
			log.Error("Генерация обложки не удалась", zap.Error(err))
			return nil, err
		}
	}

	for i := range output.Chapters {
		chapter := &output.Chapters[i]
		if chapter.ImagePrompt == "" {
			continue
		}
		pageIndex := i + 1

		scene := utils.FormatChapterScenePrompt(chapter.ImagePrompt, req.ImageStyle)
		finalPrompt := scene
		if character != nil {
			finalPrompt = utils.PrependCharacterClause(utils.BuildCharacterPrompt(promptData, req.ImageStyle, false), scene)
		}

		imageURL, err := s.renderPage(ctx, storyID, characterID, pageIndex, finalPrompt, negativePrompt, req.ImageStyle, character)
		if err != nil {
			log.Error("Генерация иллюстрации главы не удалась",
				zap.Int("page_index", pageIndex), zap.Error(err))
			return nil, err
		}
		chapter.ImageURL = imageURL
	}

	rawOutput, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("не удалось сериализовать вывод истории: %w", err)
	}

	story := &models.StoryData{
		StoryID:      storyID,
		StorySubject: req.StorySubject,
		StoryType:    req.StoryType,
		AgeGroup:     req.AgeGroup,
		ImageStyle:   req.ImageStyle,
		Output:       rawOutput,
		CoverImage:   coverURL,
		UserEmail:    req.UserEmail,
		UserName:     req.UserName,
		UserImage:    req.UserImage,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("не удалось сохранить историю %s: %w", storyID, err)
	}

	if character != nil {
		link := &models.StoryCharacter{
			StoryID:     storyID,
			CharacterID: character.ID,
			Role:        "main",
			StyleToken:  utils.GenerateStyleToken(character.Descriptors, req.ImageStyle),
			Seed:        utils.GenerateDeterministicSeed(storyID, character.ID, 0),
		}
		if err := s.storyCharRepo.Create(ctx, link); err != nil {
			return nil, fmt.Errorf("не удалось привязать персонажа к истории %s: %w", storyID, err)
		}
	}

	if s.publisher != nil {
		event := messaging.StoryEvent{
			Type:      messaging.EventStoryCreated,
			StoryID:   storyID,
			UserEmail: req.UserEmail,
			Style:     req.ImageStyle,
		}
		if pubErr := s.publisher.PublishStoryEvent(ctx, event); pubErr != nil {
			log.Error("Не удалось опубликовать событие story.created", zap.Error(pubErr))
		}
	}

	log.Info("История создана", zap.String("title", output.Title))
	return story, nil
}

// resolveCharacter переиспользует существующего персонажа пользователя
// по имени либо создает нового.
func (s *storyServiceImpl) resolveCharacter(ctx context.Context, userEmail string, data models.CharacterPromptData) (*models.Character, error) {
	name := strings.TrimSpace(data.Name)

	existing, err := s.characterRepo.FindByUserAndName(ctx, userEmail, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("не удалось найти персонажа '%s': %w", name, err)
	}

	character := &models.Character{
		UserEmail:    userEmail,
		Name:         name,
		PrimaryColor: data.PrimaryColor,
		Outfit:       data.Outfit,
	}
	if data.Descriptors != nil {
		character.Descriptors = *data.Descriptors
	}

	id, err := s.characterRepo.Create(ctx, character)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать персонажа '%s': %w", name, err)
	}
	character.ID = id
	return character, nil
}

// renderPage генерирует одну страницу, релоцирует результат и апсертит
// запись генерации. character может быть nil (consistency выключен).
func (s *storyServiceImpl) renderPage(
	ctx context.Context,
	storyID string,
	characterID int64,
	pageIndex int,
	prompt, negativePrompt, style string,
	character *models.Character,
) (string, error) {
	providerURL, err := s.imageClient.SubmitAndAwaitImage(ctx, prompt, negativePrompt)
	if err != nil {
		return "", err
	}
	durableURL, err := s.relocator.Relocate(ctx, providerURL)
	if err != nil {
		return "", err
	}

	gen := &models.PageGeneration{
		StoryID:   storyID,
		PageIndex: pageIndex,
		ImageURL:  durableURL,
		Seed:      utils.GenerateDeterministicSeed(storyID, characterID, pageIndex),
		Style:     style,
	}
	if negativePrompt != "" {
		gen.NegativePrompt = &negativePrompt
	}
	if character != nil {
		snapshot, err := json.Marshal(models.CharacterPromptContext{
			Name:        character.Name,
			Descriptors: &character.Descriptors,
			Style:       style,
		})
		if err != nil {
			return "", fmt.Errorf("не удалось сериализовать контекст персонажа: %w", err)
		}
		gen.CharacterPromptCtx = snapshot
	}

	if err := s.pageGenRepo.Upsert(ctx, gen); err != nil {
		return "", fmt.Errorf("не удалось сохранить генерацию страницы %d: %w", pageIndex, err)
	}
	return durableURL, nil
}
