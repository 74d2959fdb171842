package formati_test

import (
	"fmt"

	"github.com/nobane/formati/pkg/formati"
)

func ExampleFormat() {
	vars := formati.Vars{
		"coordinates": []int{3, 4},
		"user":        map[string]any{"name": "ann", "id": 7},
	}

	s, err := formati.Format(vars, "Position: ({coordinates.0}, {coordinates.1})")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(s)

	s, _ = formati.Format(vars, "{user.name:>5} #{user.id:03} {}", "explicit")
	fmt.Println(s)

	// Output:
	// Position: (3, 4)
	//   ann #007 explicit
}

func ExampleFormatter_Prepare() {
	p, err := formati.New().Prepare("{item.name:<6}|{item.qty:>3}")
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, item := range []map[string]any{
		{"name": "apple", "qty": 3},
		{"name": "pear", "qty": 12},
	} {
		line, _ := p.Render(formati.Vars{"item": item})
		fmt.Println(line)
	}

	// Output:
	// apple |  3
	// pear  | 12
}

func ExamplePrintln() {
	_, _ = formati.Println(formati.Vars{"v": []string{"x", "y"}}, "last={v.1} first={v.0}")

	// Output:
	// last=y first=x
}
