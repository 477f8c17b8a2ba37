package problemgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

// template builds one question at a level (1-5). Templates must be
// correct by construction.
type template func(rng *rand.Rand, level int) *Question

// ArithmeticGenerator produces arithmetic questions procedurally, without
// an LLM. It covers whole-number operations and like-denominator
// fractions; other topics and subtopics return ErrUnsupported.
type ArithmeticGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewArithmetic creates an ArithmeticGenerator drawing from rng. A nil rng
// is seeded randomly.
func NewArithmetic(rng *rand.Rand) *ArithmeticGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ArithmeticGenerator{rng: rng}
}

var templates = map[string]map[string]template{
	"addition": {
		"no-regroup":    addNoRegroup,
		"regroup":       addRegroup,
		"three-addends": addThree,
	},
	"subtraction": {
		"no-regroup":   subNoRegroup,
		"regroup":      subRegroup,
		"across-zeros": subAcrossZeros,
	},
	"multiplication": {
		"facts":     mulFacts,
		"by-ten":    mulByTen,
		"two-digit": mulTwoDigit,
	},
	"division": {
		"facts":         divFacts,
		"remainders":    divRemainders,
		"long-division": divLong,
	},
	"fractions": {
		"equivalent":    fracEquivalent,
		"compare":       fracCompare,
		"add-like":      fracAddLike,
		"subtract-like": fracSubtractLike,
	},
}

// Supports reports whether topicID has at least one template.
func (g *ArithmeticGenerator) Supports(topicID string) bool {
	return len(templates[topicID]) > 0
}

// Subtopics returns the supported subtopics of topicID, sorted.
func (g *ArithmeticGenerator) Subtopics(topicID string) []string {
	subs := make([]string, 0, len(templates[topicID]))
	for s := range templates[topicID] {
		subs = append(subs, s)
	}
	slices.Sort(subs)
	return subs
}

// Generate implements Generator.
func (g *ArithmeticGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byTopic := templates[input.Topic.ID]
	if len(byTopic) == 0 {
		return nil, fmt.Errorf("%w: topic %q", ErrUnsupported, input.Topic.ID)
	}

	var eligible []string
	for _, s := range g.Subtopics(input.Topic.ID) {
		if len(input.AllowedSubtopics) == 0 || slices.Contains(input.AllowedSubtopics, s) {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: subtopics %v of %q", ErrUnsupported, input.AllowedSubtopics, input.Topic.ID)
	}

	level := LevelFor(input.Difficulty)

	g.mu.Lock()
	sub := eligible[g.rng.IntN(len(eligible))]
	q := byTopic[sub](g.rng, level)
	g.mu.Unlock()

	q.Topic = input.Topic.ID
	q.Subtopic = sub
	q.Level = level
	if level > 3 {
		q.Hint = ""
	}
	return q, nil
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

func pow10(n int) int {
	p := 1
	for range n {
		p *= 10
	}
	return p
}

// digitsFor is the operand width used at each level.
func digitsFor(level int) int {
	return []int{1, 2, 2, 3, 4}[min(5, max(1, level))-1]
}

func numeric(text, answer, explanation string) *Question {
	return &Question{
		Text:        text,
		Format:      FormatNumeric,
		Answer:      answer,
		AnswerType:  AnswerTypeInteger,
		Explanation: explanation,
	}
}

func addNoRegroup(rng *rand.Rand, level int) *Question {
	n := digitsFor(level)
	var a, b int
	for col := range n {
		lo := 0
		if col == n-1 {
			lo = 1
		}
		da := between(rng, lo, 8)
		db := between(rng, lo, 9-da)
		a += da * pow10(col)
		b += db * pow10(col)
	}
	q := numeric(fmt.Sprintf("What is %d + %d?", a, b), fmt.Sprint(a+b),
		fmt.Sprintf("Add each column; no column goes past 9. %d + %d = %d.", a, b, a+b))
	q.Hint = "Add the ones first, then the tens."
	return q
}

func addRegroup(rng *rand.Rand, level int) *Question {
	n := digitsFor(level)
	lo, hi := max(1, pow10(n-1)), pow10(n)-1
	a, b := between(rng, lo, hi), between(rng, lo, hi)
	a1 := between(rng, 1, 9)
	b1 := between(rng, 10-a1, 9)
	a = a - a%10 + a1
	b = b - b%10 + b1
	q := numeric(fmt.Sprintf("What is %d + %d?", a, b), fmt.Sprint(a+b),
		fmt.Sprintf("The ones make %d, so write %d and carry 1. %d + %d = %d.", a1+b1, (a1+b1)%10, a, b, a+b))
	q.Hint = "When a column adds up to 10 or more, carry to the next column."
	return q
}

func addThree(rng *rand.Rand, level int) *Question {
	n := max(1, digitsFor(level)-1)
	lo, hi := max(1, pow10(n-1)), pow10(n)-1
	a, b, c := between(rng, lo, hi), between(rng, lo, hi), between(rng, lo, hi)
	q := numeric(fmt.Sprintf("What is %d + %d + %d?", a, b, c), fmt.Sprint(a+b+c),
		fmt.Sprintf("First %d + %d = %d, then %d + %d = %d.", a, b, a+b, a+b, c, a+b+c))
	q.Hint = "Add two of the numbers first, then add the third."
	return q
}

func subNoRegroup(rng *rand.Rand, level int) *Question {
	n := digitsFor(level)
	var a, b int
	for col := range n {
		lo := 0
		if col == n-1 {
			lo = 1
		}
		da := between(rng, lo, 9)
		db := between(rng, lo, da)
		a += da * pow10(col)
		b += db * pow10(col)
	}
	q := numeric(fmt.Sprintf("What is %d - %d?", a, b), fmt.Sprint(a-b),
		fmt.Sprintf("Subtract each column; every top digit is big enough. %d - %d = %d.", a, b, a-b))
	q.Hint = "Subtract the ones first, then the tens."
	return q
}

func subRegroup(rng *rand.Rand, level int) *Question {
	n := max(2, digitsFor(level))
	a := between(rng, pow10(n-1), pow10(n)-1)
	a1 := between(rng, 0, 8)
	b1 := between(rng, a1+1, 9)
	a = a - a%10 + a1
	b := between(rng, 0, a/10-1)*10 + b1
	q := numeric(fmt.Sprintf("What is %d - %d?", a, b), fmt.Sprint(a-b),
		fmt.Sprintf("%d is less than %d in the ones, so borrow a ten. %d - %d = %d.", a1, b1, a, b, a-b))
	q.Hint = "If the top digit is smaller, borrow from the next column."
	return q
}

func subAcrossZeros(rng *rand.Rand, level int) *Question {
	n := max(3, digitsFor(level)+1)
	a := between(rng, 2, 9) * pow10(n-1)
	b := between(rng, 1, a-1)
	if b%10 == 0 {
		b++
	}
	q := numeric(fmt.Sprintf("What is %d - %d?", a, b), fmt.Sprint(a-b),
		fmt.Sprintf("Borrow across the zeros of %d. %d - %d = %d.", a, a, b, a-b))
	q.Hint = "Borrow from the first non-zero digit and work back to the ones."
	return q
}

func mulFacts(rng *rand.Rand, level int) *Question {
	top := min(12, 4+2*level)
	a, b := between(rng, 2, top), between(rng, 2, top)
	q := numeric(fmt.Sprintf("What is %d * %d?", a, b), fmt.Sprint(a*b),
		fmt.Sprintf("%d groups of %d make %d.", a, b, a*b))
	q.Hint = "Skip count by the smaller number."
	return q
}

func mulByTen(rng *rand.Rand, level int) *Question {
	a := between(rng, 2, 10*level+9)
	zeros := between(rng, 1, min(3, level))
	b := pow10(zeros)
	q := numeric(fmt.Sprintf("What is %d * %d?", a, b), fmt.Sprint(a*b),
		fmt.Sprintf("Multiplying by %d adds %d zero(s): %d * %d = %d.", b, zeros, a, b, a*b))
	q.Hint = "Count the zeros in the power of ten."
	return q
}

func mulTwoDigit(rng *rand.Rand, level int) *Question {
	a := between(rng, 10, 99)
	b := between(rng, 2, 9)
	if level > 3 {
		b = between(rng, 11, 99)
	}
	q := numeric(fmt.Sprintf("What is %d * %d?", a, b), fmt.Sprint(a*b),
		fmt.Sprintf("Split %d into tens and ones: %d * %d = %d + %d = %d.",
			a, a, b, (a/10*10)*b, (a%10)*b, a*b))
	q.Hint = "Multiply the tens and the ones separately, then add."
	return q
}

func divFacts(rng *rand.Rand, level int) *Question {
	top := min(12, 4+2*level)
	d, quo := between(rng, 2, top), between(rng, 2, top)
	q := numeric(fmt.Sprintf("What is %d / %d?", d*quo, d), fmt.Sprint(quo),
		fmt.Sprintf("%d * %d = %d, so %d / %d = %d.", d, quo, d*quo, d*quo, d, quo))
	q.Hint = "Think of the multiplication fact."
	return q
}

func divRemainders(rng *rand.Rand, level int) *Question {
	d := between(rng, 3, min(12, 4+level))
	quo := between(rng, 2, 5*level+5)
	r := between(rng, 1, d-1)
	n := d*quo + r
	q := numeric(fmt.Sprintf("What is the remainder when %d is divided by %d?", n, d), fmt.Sprint(r),
		fmt.Sprintf("%d * %d = %d, and %d - %d = %d left over.", d, quo, d*quo, n, d*quo, r))
	q.Hint = "Find the largest multiple that fits, then see what is left."
	return q
}

func divLong(rng *rand.Rand, level int) *Question {
	d := between(rng, 2, 9)
	if level > 3 {
		d = between(rng, 11, 25)
	}
	quo := between(rng, 10, pow10(min(3, 1+level/2))-1)
	q := numeric(fmt.Sprintf("What is %d / %d?", d*quo, d), fmt.Sprint(quo),
		fmt.Sprintf("Divide digit by digit from the left: %d / %d = %d.", d*quo, d, quo))
	q.Hint = "Divide, multiply, subtract, bring down."
	return q
}

// fraction is a reduced positive fraction.
type fraction struct{ n, d int }

func reduce(n, d int) fraction {
	g := int(gcd(int64(n), int64(d)))
	return fraction{n / g, d / g}
}

func (f fraction) String() string { return fmt.Sprintf("%d/%d", f.n, f.d) }

func (f fraction) less(o fraction) bool { return f.n*o.d < o.n*f.d }

func fracEquivalent(rng *rand.Rand, level int) *Question {
	d := between(rng, 2, 4+level)
	n := between(rng, 1, d-1)
	f := reduce(n, d)
	k := between(rng, 2, 2+level)
	q := numeric(fmt.Sprintf("Complete the equivalent fraction: %s = ?/%d", f, f.d*k), fmt.Sprint(f.n*k),
		fmt.Sprintf("The denominator was multiplied by %d, so multiply the numerator by %d too: %d * %d = %d.",
			k, k, f.n, k, f.n*k))
	q.Hint = "Whatever you do to the bottom, do to the top."
	return q
}

func fracCompare(rng *rand.Rand, level int) *Question {
	var fs []fraction
	if level >= 3 {
	search:
		for range 200 {
			d := between(rng, 2, 12)
			f := reduce(between(rng, 1, d-1), d)
			for _, o := range fs {
				if !f.less(o) && !o.less(f) {
					continue search
				}
			}
			if fs = append(fs, f); len(fs) == 4 {
				break
			}
		}
	}
	if len(fs) < 4 {
		d := between(rng, 5, 8+level)
		fs = fs[:0]
		for _, n := range rng.Perm(d - 1)[:4] {
			fs = append(fs, reduce(n+1, d))
		}
	}

	largest := fs[0]
	choices := make([]string, len(fs))
	for i, f := range fs {
		choices[i] = f.String()
		if largest.less(f) {
			largest = f
		}
	}

	return &Question{
		Text:        fmt.Sprintf("Which fraction is the largest: %s?", strings.Join(choices, ", ")),
		Format:      FormatMultipleChoice,
		Answer:      largest.String(),
		AnswerType:  AnswerTypeFraction,
		Choices:     choices,
		Hint:        "Give the fractions a common denominator, then compare numerators.",
		Explanation: fmt.Sprintf("With a common denominator, %s has the biggest numerator.", largest),
	}
}

func fracAddLike(rng *rand.Rand, level int) *Question {
	d := between(rng, 3, 6+2*level)
	a := between(rng, 1, d-2)
	b := between(rng, 1, d-1-a)
	sum := reduce(a+b, d)
	return &Question{
		Text:        fmt.Sprintf("What is %d/%d + %d/%d?", a, d, b, d),
		Format:      FormatNumeric,
		Answer:      sum.String(),
		AnswerType:  AnswerTypeFraction,
		Hint:        "Keep the denominator and add the numerators.",
		Explanation: fmt.Sprintf("%d + %d = %d, so the sum is %d/%d = %s.", a, b, a+b, a+b, d, sum),
	}
}

func fracSubtractLike(rng *rand.Rand, level int) *Question {
	d := between(rng, 3, 6+2*level)
	a := between(rng, 2, d-1)
	b := between(rng, 1, a-1)
	diff := reduce(a-b, d)
	return &Question{
		Text:        fmt.Sprintf("What is %d/%d - %d/%d?", a, d, b, d),
		Format:      FormatNumeric,
		Answer:      diff.String(),
		AnswerType:  AnswerTypeFraction,
		Hint:        "Keep the denominator and subtract the numerators.",
		Explanation: fmt.Sprintf("%d - %d = %d, so the difference is %d/%d = %s.", a, b, a-b, a-b, d, diff),
	}
}
