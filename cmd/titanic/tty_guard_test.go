package main

import "testing"

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		args  []string
		robot bool
		want  bool
	}{
		{nil, false, false},
		{[]string{"--data", "x.csv"}, false, false},
		{nil, true, true},
		{[]string{"--robot-render"}, false, true},
		{[]string{"-robot-domain"}, false, true},
		{[]string{"--export=charts.svg"}, false, true},
		{[]string{"--export-dir", "out"}, false, true},
		{[]string{"--version"}, false, true},
		{[]string{"--export-wizard"}, false, false},
	}
	for _, tt := range tests {
		if got := shouldSuppressTTYQueries(tt.args, tt.robot); got != tt.want {
			t.Errorf("shouldSuppressTTYQueries(%v, %v) = %v, want %v", tt.args, tt.robot, got, tt.want)
		}
	}
}
