package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found") // General not found
	ErrStoryNotFound = errors.New("story not found")

	// Request Validation Errors
	ErrInvalidRequest       = errors.New("invalid request data")
	ErrCharacterValidation  = errors.New("character data failed validation")
	ErrMissingCharacterData = errors.New("no character data found for this story")

	// Image Pipeline Errors
	ErrImageGeneration   = errors.New("image generation failed")
	ErrGenerationTimeout = errors.New("image generation timed out")
	ErrStorageRelocation = errors.New("failed to relocate image to durable storage")

	// Restyle Errors
	ErrRestyleFailed     = errors.New("failed to re-style story")
	ErrRestyleInProgress = errors.New("restyle is already in progress for this story")

	// Story Generation Errors
	ErrStoryGeneration = errors.New("story generation failed")

	// Vocabulary Errors
	ErrDuplicateWord = errors.New("word already saved for this user")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
)
