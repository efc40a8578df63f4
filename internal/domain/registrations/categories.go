package registrations

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrAgeOutOfRange   = errors.New("player age outside category range")
	ErrGenderMismatch  = errors.New("player gender does not match category")
	ErrInvalidDOB      = errors.New("invalid date of birth")
)

const DateLayout = "2006-01-02"

// Category is an age/gender bracket with a fixed entry fee in INR.
type Category struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	MinAge int     `json:"min_age"`
	MaxAge int     `json:"max_age"`
	Gender string  `json:"gender"`
}

var categories = map[string]Category{
	"kids-boys":     {Key: "kids-boys", Name: "Kids (7-9 years) - Boys", Price: 100, MinAge: 7, MaxAge: 9, Gender: "male"},
	"kids-girls":    {Key: "kids-girls", Name: "Kids (7-9 years) - Girls", Price: 100, MinAge: 7, MaxAge: 9, Gender: "female"},
	"juniors-boys":  {Key: "juniors-boys", Name: "Juniors (10-14 years) - Boys", Price: 200, MinAge: 10, MaxAge: 14, Gender: "male"},
	"juniors-girls": {Key: "juniors-girls", Name: "Juniors (10-14 years) - Girls", Price: 200, MinAge: 10, MaxAge: 14, Gender: "female"},
	"adults-men":    {Key: "adults-men", Name: "Adults (15+ years) - Men's", Price: 400, MinAge: 15, MaxAge: 100, Gender: "male"},
	"adults-women":  {Key: "adults-women", Name: "Adults (15+ years) - Women's", Price: 400, MinAge: 15, MaxAge: 100, Gender: "female"},
}

func LookupCategory(key string) (Category, bool) {
	c, ok := categories[key]
	return c, ok
}

// Categories lists all brackets, cheapest first.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// AgeOn returns the age in whole years on the given day.
func AgeOn(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// Admit fills in each player's age as of now and checks it, and the
// player's gender, against the bracket.
func (c Category) Admit(players []*Player, now time.Time) error {
	for _, p := range players {
		dob, err := time.Parse(DateLayout, p.DateOfBirth)
		if err != nil {
			return fmt.Errorf("%w for %s: %q", ErrInvalidDOB, p.Name, p.DateOfBirth)
		}
		p.Age = AgeOn(dob, now)
		if p.Age < c.MinAge || p.Age > c.MaxAge {
			return fmt.Errorf("%w: %s is %d, %s needs %d-%d", ErrAgeOutOfRange, p.Name, p.Age, c.Key, c.MinAge, c.MaxAge)
		}
		if p.Gender != c.Gender {
			return fmt.Errorf("%w: %s is %s, %s is %s only", ErrGenderMismatch, p.Name, p.Gender, c.Key, c.Gender)
		}
	}
	return nil
}
