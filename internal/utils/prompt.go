package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"kidtales-server/internal/models"
)

// hash32 - полиномиальный rolling hash (h = h*31 + code) с переполнением
// в знаковом 32-битном диапазоне. Не криптографический: используется только
// для стабилизации идентичности, коллизии допустимы.
func hash32(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

// GenerateDeterministicSeed возвращает воспроизводимый seed для тройки
// (история, персонаж, страница). Одинаковые входы всегда дают одинаковый
// seed; разные индексы страниц дают разные seed с высокой вероятностью.
func GenerateDeterministicSeed(storyID string, characterID int64, pageIndex int) string {
	combined := fmt.Sprintf("%s-%d-%d", storyID, characterID, pageIndex)
	h := int64(hash32(combined))
	if h < 0 {
		h = -h
	}
	return strconv.FormatInt(h, 10)
}

// GenerateStyleToken возвращает производный идентификатор набора описателей
// персонажа + стиля. Изменение любого поля описателей или метки стиля
// меняет токен (с точностью до коллизий хеша).
func GenerateStyleToken(descriptors models.CharacterDescriptors, style string) string {
	// json.Marshal для struct детерминирован (порядок полей фиксирован)
	raw, err := json.Marshal(descriptors)
	if err != nil {
		// Descriptors - плоская структура строк, маршалинг не может упасть;
		// оставляем raw пустым, токен все равно останется детерминированным.
		raw = []byte("{}")
	}
	h := int64(hash32(string(raw) + style))
	if h < 0 {
		h = -h
	}
	return strconv.FormatInt(h, 10)
}

// BuildCharacterPrompt собирает текстовую клаузу персонажа для промпта
// генерации. Вызывающий код подставляет ее ПЕРЕД описанием сцены,
// разделяя запятой. Чистая функция: одинаковые входы дают побайтно
// идентичные строки.
func BuildCharacterPrompt(ch models.CharacterPromptData, style string, isCover bool) string {
	var b strings.Builder
	b.WriteString(ch.Name)

	if d := ch.Descriptors; d != nil {
		if d.Age != "" {
			b.WriteString(", " + d.Age + " years old")
		}
		if d.Traits != "" {
			b.WriteString(", " + d.Traits)
		}
		if d.Mood != "" {
			b.WriteString(", " + d.Mood + " expression")
		}
	}

	if ch.PrimaryColor != "" {
		b.WriteString(", " + ch.PrimaryColor + " clothing")
	}
	if ch.Outfit != "" {
		b.WriteString(", wearing " + ch.Outfit)
	}

	if isCover {
		b.WriteString(", centered, storybook cover style")
	}

	b.WriteString(", " + style + " art style, high quality, detailed")

	return b.String()
}

// baseNegativeTerms всегда входят в негативный промпт.
var baseNegativeTerms = []string{"blurry", "low quality", "distorted", "ugly", "deformed"}

// BuildNegativePrompt собирает негативный промпт, подавляющий дрейф
// внешности персонажа между страницами. Гарантий, что image-модель
// учитывает негативный промпт, нет - мы только формируем инструкцию.
func BuildNegativePrompt(ch models.CharacterPromptData) string {
	terms := make([]string, len(baseNegativeTerms), len(baseNegativeTerms)+2)
	copy(terms, baseNegativeTerms)

	if d := ch.Descriptors; d != nil {
		if d.HairColor != "" {
			terms = append(terms, "different hair color than "+d.HairColor)
		}
		if d.EyeColor != "" {
			terms = append(terms, "different eye color than "+d.EyeColor)
		}
	}

	return strings.Join(terms, ", ")
}

// ValidateCharacterData проверяет минимальный инвариант персонажа:
// непустое имя длиной не более 50 символов (после обрезки пробелов).
// Вызывающий код обязан отказать в сохранении/consistency-режиме при false.
func ValidateCharacterData(ch models.CharacterPromptData) bool {
	name := strings.TrimSpace(ch.Name)
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= 50
}
