package question

import "fmt"

// NewCopyStroke builds the copy_stroke question (spec §4.7): synchronous,
// the target character serves as both the target word and the handwrite
// target, with submit_url supplied by the blob store collaborator.
func NewCopyStroke(wordID int32, targetChar, submitURL string) *Question {
	return &Question{
		Kind:         KindCopyStroke,
		AnswerShape:  ShapeWriting,
		TargetWordID: wordID,
		Prompt:       fmt.Sprintf("寫出: %s", targetChar),
		Writing: &WritingPayload{
			TargetChar: targetChar,
			SubmitURL:  submitURL,
		},
	}
}

// listeningDistractors are the fixed distractor characters used to round
// out the listening question's four options (spec §4.7: "the others are
// fixed distractors").
var listeningDistractors = []string{"一", "二", "三"}

// NewListening builds the listening question (spec §4.7): asynchronous,
// pronunciationURL plays the target word's audio; one of four options is
// the target character, the rest are fixed distractors.
func NewListening(wordID int32, targetChar, pronunciationURL string) (*Question, error) {
	mc, err := fourChoiceMultiChoice(targetChar, listeningDistractors)
	if err != nil {
		return nil, fmt.Errorf("question: listening: %w", err)
	}
	sound := pronunciationURL
	return &Question{
		Kind:         KindListening,
		AnswerShape:  ShapeMultiChoice,
		TargetWordID: wordID,
		Prompt:       "你聽到的是哪個字?",
		GivenMaterial: &GivenMaterial{
			Sound: &sound,
		},
		MultiChoice: mc,
	}, nil
}
