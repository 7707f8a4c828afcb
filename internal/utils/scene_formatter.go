package utils

import "fmt"

// FormatCoverScenePrompt возвращает сценовый промпт обложки.
// coverDescription - текстовое описание обложки из вывода истории,
// title печатается на самой обложке.
func FormatCoverScenePrompt(coverDescription, title, style string) string {
	return fmt.Sprintf(
		`%s in %s style. Text: "%s" in bold, centered at the top like a storybook cover. Clean background, well-lit, high-quality illustration.`,
		coverDescription, style, title,
	)
}

// FormatChapterScenePrompt возвращает сценовый промпт иллюстрации главы.
func FormatChapterScenePrompt(chapterImagePrompt, style string) string {
	return fmt.Sprintf("%s in %s style. High quality, detailed illustration.", chapterImagePrompt, style)
}

// PrependCharacterClause подставляет клаузу персонажа перед сценовым
// промптом. Пустая клауза оставляет сценовый промпт без изменений.
func PrependCharacterClause(characterClause, scenePrompt string) string {
	if characterClause == "" {
		return scenePrompt
	}
	return characterClause + ", " + scenePrompt
}
