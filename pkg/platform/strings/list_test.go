package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "only separators", raw: " , ,", want: nil},
		{name: "trims entries", raw: " http://a.test , http://b.test", want: []string{"http://a.test", "http://b.test"}},
		{name: "keeps first duplicate", raw: "b,a,b", want: []string{"b", "a"}},
		{name: "case sensitive", raw: "Broker:9092,broker:9092", want: []string{"Broker:9092", "broker:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestNormalizeEmails(t *testing.T) {
	got := NormalizeEmails([]string{" TPO@College.edu", "", "tpo@college.edu", "dean@college.edu "})
	assert.Equal(t, []string{"tpo@college.edu", "dean@college.edu"}, got)
	assert.Nil(t, NormalizeEmails(nil))
	assert.Equal(t, "a@b.c", NormalizeEmail("  A@B.C "))
}
