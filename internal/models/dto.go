package models

// RestyleRequest - тело запроса POST /api/restyle-story.
type RestyleRequest struct {
	StoryID  string `json:"storyId"`
	NewStyle string `json:"newStyle"`
}

// RestyledPage - одна фактически перерисованная страница в ответе рестайла.
type RestyledPage struct {
	PageIndex int    `json:"pageIndex"`
	OldImage  string `json:"oldImage"`
	NewImage  string `json:"newImage"`
}

// GenerationUpdate - обновление записи PageGeneration в ответе рестайла.
type GenerationUpdate struct {
	PageIndex int    `json:"pageIndex"`
	NewImage  string `json:"newImage"`
	NewSeed   string `json:"newSeed"`
}

// RestyleResponse - успешный ответ POST /api/restyle-story.
type RestyleResponse struct {
	Success            bool               `json:"success"`
	Message            string             `json:"message"`
	RestyledPages      []RestyledPage     `json:"restyledPages"`
	UpdatedGenerations []GenerationUpdate `json:"updatedGenerations"`
	NewStyle           string             `json:"newStyle"`
}

// GenerateImageRequest - тело запроса POST /api/generate-image.
// CharacterData используется только при EnforceConsistency=true.
type GenerateImageRequest struct {
	Prompt             string                `json:"prompt"`
	EnforceConsistency bool                  `json:"enforceConsistency,omitempty"`
	CharacterData      *CharacterPromptData  `json:"characterData,omitempty"`
}

// CharacterPromptData - входные данные персонажа для построения промпта.
// Это транспортная форма Character: имя + описатели без идентификаторов.
type CharacterPromptData struct {
	Name         string                `json:"name"`
	Descriptors  *CharacterDescriptors `json:"descriptors,omitempty"`
	PrimaryColor string                `json:"primaryColor,omitempty"`
	Outfit       string                `json:"outfit,omitempty"`
}

// GenerateImageResponse - успешный ответ POST /api/generate-image.
// Prompt - финальный промпт, фактически отправленный провайдеру.
type GenerateImageResponse struct {
	Success            bool    `json:"success"`
	ImageURL           string  `json:"imageUrl"`
	Prompt             string  `json:"prompt"`
	NegativePrompt     *string `json:"negativePrompt"`
	EnforceConsistency bool    `json:"enforceConsistency"`
}

// CreateStoryRequest - тело запроса POST /api/stories.
type CreateStoryRequest struct {
	StorySubject       string               `json:"storySubject"`
	StoryType          string               `json:"storyType"`
	AgeGroup           string               `json:"ageGroup"`
	ImageStyle         string               `json:"imageStyle"`
	EnforceConsistency bool                 `json:"enforceConsistency,omitempty"`
	CharacterData      *CharacterPromptData `json:"characterData,omitempty"`
	UserEmail          string               `json:"userEmail"`
	UserName           string               `json:"userName,omitempty"`
	UserImage          string               `json:"userImage,omitempty"`
}

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
