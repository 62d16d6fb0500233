package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	QuestionTitleMinLen = 40
	QuestionTitleMaxLen = 40
	QuestionTextMinLen  = 20
	QuestionTextMaxLen  = 200

	ChoiceTextMinLen = 1
	ChoiceTextMaxLen = 60
	ChoicesMinNumber = 2
	ChoicesMaxNumber = 10
	UsernameMaxLen   = 150
	PasswordMinLen   = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.-]+$`)

func ValidateQuestionTitle(title string) error {
	return validateLength("Question title", title, QuestionTitleMinLen, QuestionTitleMaxLen)
}

func ValidateQuestionText(text string) error {
	return validateLength("Question text", text, QuestionTextMinLen, QuestionTextMaxLen)
}

func ValidateChoiceText(text string) error {
	return validateLength("Choice text", text, ChoiceTextMinLen, ChoiceTextMaxLen)
}

// ValidateChoiceSet checks the complete set of choice texts a question would
// end up with: no duplicates, count within bounds, every text within bounds.
func ValidateChoiceSet(texts []string) error {
	seen := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		if _, ok := seen[text]; ok {
			return ErrDuplicateChoices
		}
		seen[text] = struct{}{}
	}
	if len(texts) < ChoicesMinNumber {
		return ErrTooFewChoices
	}
	if len(texts) > ChoicesMaxNumber {
		return ErrTooManyChoices
	}
	for _, text := range texts {
		if err := ValidateChoiceText(text); err != nil {
			return err
		}
	}
	return nil
}

func ValidateUsername(username string) error {
	if err := validateLength("Username", username, 1, UsernameMaxLen); err != nil {
		return err
	}
	if !usernamePattern.MatchString(username) {
		return Validation("Enter a valid username. This value may contain only letters, numbers, and ./-/_ characters.")
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return Validation(fmt.Sprintf("Password must be at least %d characters long.", PasswordMinLen))
	}
	return nil
}

func validateLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen {
		return Validation(fmt.Sprintf("%s must be at least %d characters long.", field, minLen))
	}
	if n > maxLen {
		return Validation(fmt.Sprintf("%s must be no longer than %d characters.", field, maxLen))
	}
	return nil
}
