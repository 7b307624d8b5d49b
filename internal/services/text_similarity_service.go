package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/alimgiray/bizscope/internal/models"
)

// suggestionThreshold is the lowest similarity offered as a "did you mean"
const suggestionThreshold = 0.5

type TextSimilarityService struct{}

func NewTextSimilarityService() *TextSimilarityService {
	return &TextSimilarityService{}
}

// CalculateSimilarity calculates the similarity between two strings
// Returns a value between 0 (completely different) and 1 (identical)
func (s *TextSimilarityService) CalculateSimilarity(str1, str2 string) float64 {
	if str1 == str2 {
		return 1.0
	}

	if len(str1) == 0 || len(str2) == 0 {
		return 0.0
	}

	// Case, underscores and dashes do not matter for identifiers
	normalized1 := s.normalizeString(str1)
	normalized2 := s.normalizeString(str2)
	if len(normalized1) == 0 || len(normalized2) == 0 {
		return 0.0
	}

	distance := s.levenshteinDistance(normalized1, normalized2)
	maxLen := float64(max(len(normalized1), len(normalized2)))
	similarity := 1.0 - (float64(distance) / maxLen)

	partialBoost := s.calculatePartialMatchBoost(normalized1, normalized2)
	return math.Min(1.0, similarity+partialBoost)
}

// SuggestSection returns the analysis section whose key is closest to input.
// ok is false when nothing is close enough to be worth suggesting.
func (s *TextSimilarityService) SuggestSection(input string) (key models.SectionKey, ok bool) {
	best := 0.0
	for _, candidate := range models.SectionKeys {
		if score := s.CalculateSimilarity(input, string(candidate)); score > best {
			best = score
			key = candidate
		}
	}
	return key, best >= suggestionThreshold
}

// normalizeString lowercases str and keeps only letters and digits
func (s *TextSimilarityService) normalizeString(str string) []rune {
	var result []rune
	for _, r := range strings.ToLower(str) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			result = append(result, r)
		}
	}
	return result
}

// levenshteinDistance keeps two rows of the edit matrix
func (s *TextSimilarityService) levenshteinDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// calculatePartialMatchBoost gives bonus for containment and shared prefixes
func (s *TextSimilarityService) calculatePartialMatchBoost(a, b []rune) float64 {
	boost := 0.0

	str1, str2 := string(a), string(b)
	if strings.Contains(str1, str2) || strings.Contains(str2, str1) {
		boost += 0.2
	}

	commonPrefix := 0
	for i := 0; i < min(len(a), len(b)) && a[i] == b[i]; i++ {
		commonPrefix++
	}
	if commonPrefix > 0 {
		boost += float64(commonPrefix) / float64(max(len(a), len(b))) * 0.1
	}

	return boost
}
