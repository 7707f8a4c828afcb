package models

import (
	"encoding/json"
	"time"
)

// CharacterDescriptors - свободный набор описателей персонажа.
// Все поля опциональны; порядок полей важен для стабильности style token
// (json.Marshal сериализует поля в порядке объявления).
type CharacterDescriptors struct {
	Age       string `json:"age,omitempty"`
	Traits    string `json:"traits,omitempty"`
	Mood      string `json:"mood,omitempty"`
	Backstory string `json:"backstory,omitempty"`
	HairColor string `json:"hairColor,omitempty"`
	EyeColor  string `json:"eyeColor,omitempty"`
}

// Character - переиспользуемое определение протагониста.
// Создается один раз при включении consistency-режима; пайплайн рестайла
// читает его, но никогда не изменяет.
type Character struct {
	ID              int64                `db:"id" json:"id"`
	UserEmail       string               `db:"user_email" json:"userEmail"`
	Name            string               `db:"name" json:"name"`
	Descriptors     CharacterDescriptors `db:"descriptors" json:"descriptors"`
	PrimaryColor    string               `db:"primary_color" json:"primaryColor,omitempty"`
	Outfit          string               `db:"outfit" json:"outfit,omitempty"`
	ReferenceImages []string             `db:"reference_images" json:"referenceImages,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"createdAt"`
}

// StoryCharacter - связка история <-> персонаж.
// Seed здесь - детерминированный seed для страницы 0 (обложки), StyleToken -
// производный идентификатор набора описателей + стиля. Оба поля вычисляются
// при генерации истории и при рестайле не перезаписываются.
type StoryCharacter struct {
	ID          int64     `db:"id" json:"id"`
	StoryID     string    `db:"story_id" json:"storyId"`
	CharacterID int64     `db:"character_id" json:"characterId"`
	Role        string    `db:"role" json:"role"`
	StyleToken  string    `db:"style_token" json:"styleToken"`
	Seed        string    `db:"seed" json:"seed"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CharacterPromptContext - снапшот контекста персонажа на момент генерации
// страницы. Хранится как jsonb рядом с результатом, а не как ссылка на
// живую запись Character.
type CharacterPromptContext struct {
	Name        string                `json:"name"`
	Descriptors *CharacterDescriptors `json:"descriptors,omitempty"`
	Style       string                `json:"style"`
}

// PageGeneration - одна строка на отрендеренную страницу истории.
// PageIndex 0 - обложка, 1..N - главы. Пара (story_id, page_index)
// уникальна; запись обновляется на месте при каждом рестайле страницы.
type PageGeneration struct {
	ID                 int64           `db:"id" json:"id"`
	StoryID            string          `db:"story_id" json:"storyId"`
	PageIndex          int             `db:"page_index" json:"pageIndex"`
	ImageURL           string          `db:"image_url" json:"imageUrl"`
	Seed               string          `db:"seed" json:"seed"`
	NegativePrompt     *string         `db:"negative_prompt" json:"negativePrompt,omitempty"`
	CharacterPromptCtx json.RawMessage `db:"character_prompt_ctx" json:"characterPromptCtx,omitempty"`
	Style              string          `db:"style" json:"style"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`
}

// Chapter - одна глава сериализованного вывода истории.
// Текст главы при рестайле неизменяем, перегенерируется только иллюстрация.
type Chapter struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// StoryOutput - сериализованный результат генерации истории.
// CoverImage здесь - текстовое описание обложки для image-модели,
// не URL (URL обложки живет в StoryData.CoverImage).
type StoryOutput struct {
	Title      string    `json:"title"`
	Moral      string    `json:"moral,omitempty"`
	Vocabulary []string  `json:"vocabulary,omitempty"`
	CoverImage string    `json:"coverImage"`
	Chapters   []Chapter `json:"chapters"`
}

// StoryData - запись истории. Пайплайн рестайла изменяет только
// CoverImage и ImageStyle.
type StoryData struct {
	ID           int64           `db:"id" json:"id"`
	StoryID      string          `db:"story_id" json:"storyId"`
	StorySubject string          `db:"story_subject" json:"storySubject"`
	StoryType    string          `db:"story_type" json:"storyType"`
	AgeGroup     string          `db:"age_group" json:"ageGroup"`
	ImageStyle   string          `db:"image_style" json:"imageStyle"`
	Output       json.RawMessage `db:"output" json:"output"`
	CoverImage   string          `db:"cover_image" json:"coverImage"`
	UserEmail    string          `db:"user_email" json:"userEmail"`
	UserName     string          `db:"user_name" json:"userName"`
	UserImage    string          `db:"user_image" json:"userImage"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// ParseOutput десериализует поле Output в StoryOutput.
func (s *StoryData) ParseOutput() (*StoryOutput, error) {
	var out StoryOutput
	if err := json.Unmarshal(s.Output, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VocabularyWord - слово, сохраненное пользователем из текста истории.
type VocabularyWord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Word      string    `db:"word" json:"word"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
