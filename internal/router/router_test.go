package router

import "testing"

func TestSelect(t *testing.T) {
	r := New()

	cases := []struct {
		message string
		want    ResponderID
	}{
		{"I want to cancel my order", ResponderOrder},
		{"what toppings do you have?", ResponderMenu},
		{"what's the status of my delivery", ResponderOrder},
		{"show me the menu", ResponderMenu},
		{"do you have vegetarian options", ResponderMenu},
		{"track my orders please", ResponderOrder},
		{"hello there", ResponderMenu},
		{"", ResponderMenu},
	}

	for _, tc := range cases {
		if got := r.Select(tc.message); got != tc.want {
			t.Errorf("Select(%q) = %s, want %s", tc.message, got, tc.want)
		}
	}
}

func TestSelectTieGoesToMenu(t *testing.T) {
	r := New()

	// One order term and one menu term.
	if got := r.Select("order a pizza"); got != ResponderMenu {
		t.Fatalf("tie should go to menu, got %s", got)
	}
}

func TestSelectCaseInsensitive(t *testing.T) {
	r := New()

	if got := r.Select("CANCEL MY ORDER NOW"); got != ResponderOrder {
		t.Fatalf("expected order responder, got %s", got)
	}
}
