package model

// StructureBlock is one block of a published survey.
type StructureBlock struct {
	Title     LocalizedText       `json:"title"`
	Questions map[string]Question `json:"questions"`
}

// Structure is the block/question tree of a published survey, keyed by
// contiguous numeric string ids.
type Structure map[string]StructureBlock

func (s Structure) BlockIDs() []string {
	return SortedKeys(s)
}

func (s Structure) QuestionIDs(block string) []string {
	b, ok := s[block]
	if !ok {
		return nil
	}
	return SortedKeys(b.Questions)
}

// First returns the first question of the first non-empty block.
func (s Structure) First() (block, question string, ok bool) {
	for _, b := range s.BlockIDs() {
		if qs := s.QuestionIDs(b); len(qs) > 0 {
			return b, qs[0], true
		}
	}
	return "", "", false
}

// Next returns the question after (block, question): the next higher question
// id in the same block, else the first question of the next higher block id.
// ok is false when (block, question) is the last question or unknown.
func (s Structure) Next(block, question string) (nextBlock, nextQuestion string, ok bool) {
	blocks := s.BlockIDs()
	at := indexOf(blocks, block)
	if at < 0 {
		return "", "", false
	}

	qs := s.QuestionIDs(block)
	if i := indexOf(qs, question); i >= 0 && i+1 < len(qs) {
		return block, qs[i+1], true
	}

	for _, b := range blocks[at+1:] {
		if next := s.QuestionIDs(b); len(next) > 0 {
			return b, next[0], true
		}
	}
	return "", "", false
}

// Position reports the 1-based index of question inside its block and the
// block's question count, for "Question 2 (2/5)" headers.
func (s Structure) Position(block, question string) (index, total int) {
	qs := s.QuestionIDs(block)
	return indexOf(qs, question) + 1, len(qs)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
