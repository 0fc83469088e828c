package ai

import (
	"fmt"
	"strings"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	QuizKindTest  = "test"
	QuizKindEssay = "essay"
	QuizKindMixed = "mixed"
)

var difficultyHints = map[string]string{
	DifficultyEasy:   "- Direct questions about the main concepts",
	DifficultyMedium: "- Questions that require understanding the concepts",
	DifficultyHard:   "- Questions that require deep analysis and applying the concepts",
}

const testFormat = `{
    "type": "test",
    "question": "Question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0,
    "explanation": "Why this is the correct answer"
  }`

const essayFormat = `{
    "type": "essay",
    "question": "Question text",
    "expectedAnswer": "The answer a student is expected to give",
    "explanation": "Why that is the correct answer"
  }`

// QuizPrompt asks for exactly n questions of the given kind as one JSON array.
func QuizPrompt(material string, n int, difficulty, kind string) string {
	var b strings.Builder
	switch kind {
	case QuizKindEssay:
		b.WriteString("You are a teacher writing a short-answer practice test.\n\n")
	case QuizKindMixed:
		b.WriteString("You are a teacher writing an exam that mixes multiple-choice and short-answer questions.\n\n")
	default:
		b.WriteString("You are a teacher writing a multiple-choice exam.\n\n")
	}

	b.WriteString("Study material:\n")
	b.WriteString(material)
	b.WriteString("\n\n")

	switch kind {
	case QuizKindEssay:
		fmt.Fprintf(&b, "Generate EXACTLY %d short-answer questions based on this material.\n\n", n)
	case QuizKindMixed:
		fmt.Fprintf(&b, "Generate EXACTLY %d questions based on this material, alternating multiple-choice (\"test\") and short-answer (\"essay\") questions.\n\n", n)
	default:
		fmt.Fprintf(&b, "Generate EXACTLY %d multiple-choice questions based on this material.\n\n", n)
	}

	fmt.Fprintf(&b, "Difficulty level: %s\n", difficulty)
	if hint, ok := difficultyHints[difficulty]; ok {
		b.WriteString(hint)
		b.WriteString("\n")
	}

	b.WriteString("\nRESPONSE FORMAT (JSON):\n[\n  ")
	switch kind {
	case QuizKindEssay:
		b.WriteString(essayFormat)
	case QuizKindMixed:
		b.WriteString(testFormat)
		b.WriteString(",\n  ")
		b.WriteString(essayFormat)
	default:
		b.WriteString(testFormat)
	}
	b.WriteString("\n]\n\nRULES:\n")
	b.WriteString("- Return ONLY the JSON array, no additional text\n")
	if kind != QuizKindEssay {
		b.WriteString("- Every \"test\" question must have exactly 4 options\n")
		b.WriteString("- correctAnswer must be the index (0-3) of the correct option\n")
	}
	if kind != QuizKindTest {
		b.WriteString("- Every \"essay\" question must have a non-empty expectedAnswer\n")
	}
	b.WriteString("- Questions must cover different parts of the material\n")
	b.WriteString("- Vary the kind of question (definitions, applications, comparisons)\n")
	b.WriteString("- Explanations must be clear and educational\n")
	b.WriteString("- Write in the same language as the study material\n\n")
	b.WriteString("Respond ONLY with the JSON:")
	return b.String()
}

func EssayEvaluationPrompt(question, expectedAnswer, userAnswer string) string {
	return fmt.Sprintf(`You are an academic grader. Evaluate the student's answer.

QUESTION:
%s

EXPECTED ANSWER:
%s

STUDENT ANSWER:
%s

Decide whether the answer is correct considering:
1. It includes the key concepts
2. It is accurate and relevant
3. It shows understanding of the topic

RESPONSE FORMAT (JSON):
{
  "isCorrect": true or false (true if the answer is at least 70%% correct),
  "feedback": "specific comments on the answer (what is right, what is missing)"
}

RULES:
- Return ONLY the JSON object, no additional text
- Be constructive in the feedback
- isCorrect must be a boolean
- Write the feedback in the same language as the question

Respond ONLY with the JSON:`, question, expectedAnswer, userAnswer)
}

func RecitationPrompt(recitedText, expectedText string) string {
	return fmt.Sprintf(`You are an expert teacher assessing how well a student understands a topic.

Compare the student's explanation with the original study material and assess:
1. How well the student understands and explains the concepts
2. Which important concepts were left out
3. Which concepts were explained wrongly or imprecisely

IMPORTANT RULES:
- Return ONLY a valid JSON object, no additional text
- accuracy must reflect how complete and correct the explanation was
- Be constructive but honest
- Explaining correctly in their own words is POSITIVE
- Write in the same language as the study material

RESPONSE FORMAT (JSON):
{
  "accuracy": <number between 0 and 100>,
  "missingParts": ["missing concept 1", "missing concept 2"],
  "incorrectParts": ["mistake or imprecision 1", "mistake 2"],
  "summary": "Overall constructive assessment of the explanation"
}

ORIGINAL STUDY MATERIAL:
%s

STUDENT EXPLANATION:
%s

Respond ONLY with the JSON, no markdown, no extra explanations:`, expectedText, recitedText)
}

const BodyLanguagePrompt = `You are a presentation coach. Look at the attached frame of a student explaining a topic out loud and assess their body language.

RESPONSE FORMAT (JSON):
{
  "confidence": <integer 1-10>,
  "nervousness": <integer 1-10>,
  "posture": "short description of the posture",
  "eyeContact": "short description of the eye contact",
  "facialExpression": "short description of the facial expression",
  "suggestions": ["improvement 1", "improvement 2"]
}

Respond ONLY with the JSON:`
