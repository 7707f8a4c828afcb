package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kidtales-server/internal/models"
	"kidtales-server/internal/replicate"
	"kidtales-server/internal/storage"
	"kidtales-server/internal/utils"
)

// Стиль по умолчанию для одиночной генерации без явного стиля.
const defaultImageStyle = "storybook"

// ImageService - одиночная генерация изображения вне пайплайна истории.
// Ничего не персистит: возвращает durable URL и фактически использованные
// промпты.
type ImageService interface {
	GenerateImage(ctx context.Context, req models.GenerateImageRequest) (*models.GenerateImageResponse, error)
}

type imageServiceImpl struct {
	imageClient replicate.Client
	relocator   storage.Relocator
	logger      *zap.Logger
}

var _ ImageService = (*imageServiceImpl)(nil)

// NewImageService создает сервис одиночной генерации изображений.
func NewImageService(imageClient replicate.Client, relocator storage.Relocator, logger *zap.Logger) ImageService {
	return &imageServiceImpl{
		imageClient: imageClient,
		relocator:   relocator,
		logger:      logger.Named("ImageService"),
	}
}

func (s *imageServiceImpl) GenerateImage(ctx context.Context, req models.GenerateImageRequest) (*models.GenerateImageResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt обязателен", models.ErrInvalidRequest)
	}

	finalPrompt := req.Prompt
	var negativePrompt *string

	if req.EnforceConsistency {
		if req.CharacterData == nil {
			return nil, fmt.Errorf("%w: enforceConsistency требует characterData", models.ErrMissingCharacterData)
		}
		if !utils.ValidateCharacterData(*req.CharacterData) {
			return nil, fmt.Errorf("%w: имя персонажа должно быть 1-50 символов", models.ErrCharacterValidation)
		}

		clause := utils.BuildCharacterPrompt(*req.CharacterData, defaultImageStyle, false)
		finalPrompt = utils.PrependCharacterClause(clause, req.Prompt)
		neg := utils.BuildNegativePrompt(*req.CharacterData)
		negativePrompt = &neg
	}

	log := s.logger.With(zap.Bool("enforce_consistency", req.EnforceConsistency))
	log.Info("Генерация изображения", zap.Int("prompt_len", len(finalPrompt)))

	neg := ""
	if negativePrompt != nil {
		neg = *negativePrompt
	}
	providerURL, err := s.imageClient.SubmitAndAwaitImage(ctx, finalPrompt, neg)
	if err != nil {
		log.Error("Генерация изображения не удалась", zap.Error(err))
		return nil, err
	}

	durableURL, err := s.relocator.Relocate(ctx, providerURL)
	if err != nil {
		log.Error("Релокация изображения не удалась", zap.Error(err))
		return nil, err
	}

	log.Info("Изображение сгенерировано", zap.String("image_url", durableURL))
	return &models.GenerateImageResponse{
		Success:            true,
		ImageURL:           durableURL,
		Prompt:             finalPrompt,
		NegativePrompt:     negativePrompt,
		EnforceConsistency: req.EnforceConsistency,
	}, nil
}
