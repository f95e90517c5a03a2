package dto

import "time"

// QuizQuestionResponse is a question as shown to the player, without the answer key.
type QuizQuestionResponse struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type QuizSessionResponse struct {
	SessionID      string                 `json:"session_id"`
	SetID          string                 `json:"set_id"`
	TotalQuestions int                    `json:"total_questions"`
	Questions      []QuizQuestionResponse `json:"questions"`
	ExpiresAt      time.Time              `json:"expires_at"`
}

// SubmitAnswerRequest uses pointers so a missing field is distinguishable from index 0.
type SubmitAnswerRequest struct {
	QuestionIndex *int `json:"question_index"`
	SelectedIndex *int `json:"selected_index"`
}

type SubmitAnswerResponse struct {
	Correct            bool `json:"correct"`
	CorrectAnswerIndex int  `json:"correct_answer_index"`
	CorrectSoFar       int  `json:"correct_so_far"`
	Answered           int  `json:"answered"`
	TotalQuestions     int  `json:"total_questions"`
}

type QuizResultResponse struct {
	AttemptID  string `json:"attempt_id"`
	SetID      string `json:"set_id"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

type QuizAttemptItem struct {
	AttemptID      string    `json:"attempt_id"`
	SetID          string    `json:"set_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

type QuizAttemptsResponse struct {
	Attempts       []QuizAttemptItem `json:"attempts"`
	PaginationInfo PaginationInfo    `json:"pagination_info"`
}
