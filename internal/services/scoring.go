package services

import "studybuddy-backend/internal/models"

// ScoreQuiz grades picks against questions by position. Missing picks and
// picks outside a question's options count as wrong; extra picks are ignored.
func ScoreQuiz(questions []models.QuizQuestion, answers []int) models.QuizScore {
	score := models.QuizScore{Total: len(questions)}

	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		pick := answers[i]
		if pick < 0 || pick >= len(q.Options) {
			continue
		}
		if pick == q.AnswerIndex {
			score.Correct++
		}
	}

	if score.Total > 0 {
		score.Percent = float64(score.Correct) / float64(score.Total) * 100
	}
	return score
}
