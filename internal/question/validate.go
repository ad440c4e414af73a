package question

import "fmt"

// Validate checks the invariants listed in spec §3. It is called from
// FromRow so that a malformed store row is caught at
// the seam rather than surfacing as a confusing failure downstream.
func (q *Question) Validate() error {
	populated := 0
	if q.MultiChoice != nil {
		populated++
	}
	if q.Writing != nil {
		populated++
	}
	if q.Pairing != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("question: exactly one answer-shape payload must be populated, got %d", populated)
	}

	switch q.AnswerShape {
	case ShapeMultiChoice:
		if q.MultiChoice == nil {
			return fmt.Errorf("question: answer_shape is multi_choice but MultiChoice payload is nil")
		}
		if err := q.MultiChoice.validate(q.Kind); err != nil {
			return err
		}
	case ShapeWriting:
		if q.Writing == nil {
			return fmt.Errorf("question: answer_shape is writing but Writing payload is nil")
		}
	case ShapePairing:
		if q.Pairing == nil {
			return fmt.Errorf("question: answer_shape is pairing but Pairing payload is nil")
		}
		if err := q.Pairing.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("question: unknown answer_shape %q", q.AnswerShape)
	}

	if err := q.validateGivenMaterial(); err != nil {
		return err
	}
	return nil
}

func (q *Question) validateGivenMaterial() error {
	n := 0
	if q.GivenMaterial != nil {
		n = len(q.GivenMaterial.Images)
	}
	switch q.Kind {
	case KindIdentMirrored, KindCombineRadicalWithHint:
		if n < 2 {
			return fmt.Errorf("question: kind %q requires at least two given images, got %d", q.Kind, n)
		}
	case KindFillInRadical:
		if n != 1 {
			return fmt.Errorf("question: kind %q requires exactly one given image, got %d", q.Kind, n)
		}
	}
	if q.Kind == KindCombineRadical || q.Kind == KindCombineRadicalWithHint {
		if q.MultiChoice == nil || !q.MultiChoice.StrictOrder {
			return fmt.Errorf("question: kind %q requires strict_order", q.Kind)
		}
	}
	return nil
}

func (p *MultiChoicePayload) validate(k Kind) error {
	if p.MaxChoices < p.MinChoices || p.MinChoices < 1 {
		return fmt.Errorf("multi_choice: max_choices (%d) >= min_choices (%d) >= 1 violated", p.MaxChoices, p.MinChoices)
	}
	ids := make(map[string]struct{}, len(p.Options))
	for _, opt := range p.Options {
		if _, dup := ids[opt.ID]; dup {
			return fmt.Errorf("multi_choice: duplicate option id %q", opt.ID)
		}
		ids[opt.ID] = struct{}{}
	}
	for _, ans := range p.Answers {
		for _, cid := range ans.ChoiceIDs {
			if _, ok := ids[cid]; !ok {
				return fmt.Errorf("multi_choice: answer references unknown option id %q", cid)
			}
		}
	}
	return nil
}

func (p *PairingPayload) validate() error {
	pairIDs := make(map[string]struct{}, len(p.Pairs))
	optIDs := make(map[string]struct{}, len(p.Pairs)*2)
	for _, pair := range p.Pairs {
		if _, dup := pairIDs[pair.PairID]; dup {
			return fmt.Errorf("pairing: duplicate pair id %q", pair.PairID)
		}
		pairIDs[pair.PairID] = struct{}{}
		for _, optID := range []string{pair.A.ID, pair.B.ID} {
			if _, dup := optIDs[optID]; dup {
				return fmt.Errorf("pairing: duplicate option id %q", optID)
			}
			optIDs[optID] = struct{}{}
		}
	}
	return nil
}
