package domain

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// DistractorPolicy decides what happens when a card has fewer than three
// distinct wrong answers available in its set.
type DistractorPolicy string

const (
	// DistractorPolicyStrict rejects the quiz with INSUFFICIENT_DISTINCT_ANSWERS.
	DistractorPolicyStrict DistractorPolicy = "strict"
	// DistractorPolicyPad adds NoneOfTheAbove once, then allows fewer options.
	DistractorPolicyPad DistractorPolicy = "pad"
	// DistractorPolicyReduce allows fewer than four options.
	DistractorPolicyReduce DistractorPolicy = "reduce"
)

const (
	DefaultMaxQuestions    = 10
	MinFlashcardsForQuiz   = 4
	DistractorsPerQuestion = 3

	NoneOfTheAbove = "None of the above"
)

// QuizQuestion is derived from a flashcard on every quiz start. It is never persisted
// outside the quiz session that owns it.
type QuizQuestion struct {
	FlashcardID        string   `json:"flashcard_id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

type QuizOptions struct {
	MaxQuestions  int
	MinFlashcards int
	Policy        DistractorPolicy
}

func DefaultQuizOptions() QuizOptions {
	return QuizOptions{
		MaxQuestions:  DefaultMaxQuestions,
		MinFlashcards: MinFlashcardsForQuiz,
		Policy:        DistractorPolicyStrict,
	}
}

// NewQuizRand returns a randomly seeded PCG generator.
func NewQuizRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// GenerateQuiz builds a multiple-choice quiz from a flashcard set.
//
// The cards are shuffled and the first min(MaxQuestions, len(cards)) become questions.
// Distractors for a card are the answers of the other cards in the whole set whose
// text differs from the card's answer, de-duplicated by value. The input slice is not
// modified. rng may be nil, in which case a freshly seeded generator is used.
func GenerateQuiz(cards []*Flashcard, rng *rand.Rand, opts QuizOptions) ([]QuizQuestion, error) {
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxQuestions
	}
	if opts.MinFlashcards < MinFlashcardsForQuiz {
		opts.MinFlashcards = MinFlashcardsForQuiz
	}
	if opts.Policy == "" {
		opts.Policy = DistractorPolicyStrict
	}
	if len(cards) < opts.MinFlashcards {
		return nil, NewInsufficientDataError(len(cards), opts.MinFlashcards)
	}
	if rng == nil {
		rng = NewQuizRand()
	}

	pool := make([]*Flashcard, len(cards))
	copy(pool, cards)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	pool = pool[:min(opts.MaxQuestions, len(pool))]

	questions := make([]QuizQuestion, 0, len(pool))
	for _, card := range pool {
		distractors := distractorCandidates(card, cards)
		rng.Shuffle(len(distractors), func(i, j int) { distractors[i], distractors[j] = distractors[j], distractors[i] })

		if len(distractors) < DistractorsPerQuestion {
			switch opts.Policy {
			case DistractorPolicyPad:
				if strings.TrimSpace(card.Answer) != NoneOfTheAbove && indexOf(distractors, NoneOfTheAbove) < 0 {
					distractors = append(distractors, NoneOfTheAbove)
				}
			case DistractorPolicyReduce:
			default:
				return nil, NewInsufficientDistinctAnswersError(card.Question, len(distractors))
			}
		}
		distractors = distractors[:min(DistractorsPerQuestion, len(distractors))]

		options := append(distractors, card.Answer)
		rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

		questions = append(questions, QuizQuestion{
			FlashcardID:        card.ID,
			Question:           card.Question,
			Options:            options,
			CorrectAnswerIndex: indexOf(options, card.Answer),
		})
	}
	return questions, nil
}

// distractorCandidates returns the distinct answers of every other card in the set
// that differ from card's answer. Comparison ignores surrounding whitespace.
func distractorCandidates(card *Flashcard, set []*Flashcard) []string {
	answerKey := strings.TrimSpace(card.Answer)
	seen := map[string]struct{}{answerKey: {}}
	var out []string
	for _, other := range set {
		if other == card {
			continue
		}
		key := strings.TrimSpace(other.Answer)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func indexOf(arr []string, s string) int {
	for i, v := range arr {
		if v == s {
			return i
		}
	}
	return -1
}

// QuizResult is the end-of-quiz summary shown to the user.
type QuizResult struct {
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// Result message tiers.
const (
	MessageExcellent    = "Excellent! You've mastered this material!"
	MessageGreatJob     = "Great job! Keep practicing!"
	MessageKeepStudying = "Keep studying! You'll get there!"
)

// ScorePercentage returns round(correct/total*100), or 0 for an empty quiz.
func ScorePercentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// ResultMessage maps a percentage onto the three feedback tiers: >=90, 70-89 and below 70.
func ResultMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return MessageExcellent
	case percentage >= 70:
		return MessageGreatJob
	default:
		return MessageKeepStudying
	}
}

func ScoreQuiz(correct, total int) QuizResult {
	pct := ScorePercentage(correct, total)
	return QuizResult{
		Correct:    correct,
		Total:      total,
		Percentage: pct,
		Message:    ResultMessage(pct),
	}
}

// QuizSession is the state of one in-progress quiz. Selections holds the chosen
// option per question, -1 while unanswered.
type QuizSession struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	SetID      string         `json:"set_id"`
	Questions  []QuizQuestion `json:"questions"`
	Selections []int          `json:"selections"`
	Correct    int            `json:"correct"`
	StartedAt  time.Time      `json:"started_at"`
}

func NewQuizSession(id, userID, setID string, questions []QuizQuestion, now time.Time) *QuizSession {
	selections := make([]int, len(questions))
	for i := range selections {
		selections[i] = -1
	}
	return &QuizSession{
		ID:         id,
		UserID:     userID,
		SetID:      setID,
		Questions:  questions,
		Selections: selections,
		StartedAt:  now,
	}
}

// Answer records a selection and bumps the running score when it is correct.
// A question can only be answered once.
func (s *QuizSession) Answer(questionIndex, selectedIndex int) (bool, error) {
	if questionIndex < 0 || questionIndex >= len(s.Questions) {
		return false, ValidationErrors{NewOutOfRangeError("question_index", questionIndex, 0, len(s.Questions)-1)}
	}
	q := s.Questions[questionIndex]
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return false, ValidationErrors{NewOutOfRangeError("selected_index", selectedIndex, 0, len(q.Options)-1)}
	}
	if s.Selections[questionIndex] >= 0 {
		return false, NewConflictError("Question has already been answered").WithContext("question_index", questionIndex)
	}
	s.Selections[questionIndex] = selectedIndex
	correct := selectedIndex == q.CorrectAnswerIndex
	if correct {
		s.Correct++
	}
	return correct, nil
}

func (s *QuizSession) Answered() int {
	n := 0
	for _, sel := range s.Selections {
		if sel >= 0 {
			n++
		}
	}
	return n
}

// Result scores the session against all of its questions; unanswered ones count as wrong.
func (s *QuizSession) Result() QuizResult {
	return ScoreQuiz(s.Correct, len(s.Questions))
}

// QuizAttempt is the persisted outcome of a finished session.
type QuizAttempt struct {
	ID             string
	UserID         string
	SetID          string
	TotalQuestions int
	CorrectAnswers int
	Percentage     int
	CompletedAt    time.Time
}
