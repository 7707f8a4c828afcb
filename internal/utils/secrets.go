package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
// Для локального запуска без Docker допускается fallback на переменную
// окружения с именем секрета в верхнем регистре (например db_password ->
// DB_PASSWORD).
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("failed to read secret %s (file %s, env %s): %w", secretName, filePath, envName, err)
}
