package ast

import "testing"

func TestPrintBuilders(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"field select", Select(Var("r"), "balance"), "r.balance"},
		{"select then apply", Call(Select(Var("acc"), "pre_withdraw"), Var("n")), "acc.pre_withdraw(n)"},
		{"partial arrow", FnTy(Ty("nat"), Ty("nat"), Ty("int")), "(nat * int -> nat)"},
		{"total arrow", TotalFnTy(Ty("nat"), Ty("nat")), "(nat +> nat)"},
		{"nullary function", FnTy(Ty("bool")), "(() -> bool)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.node); got != tt.want {
				t.Errorf("Print = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFnTyIsPartial(t *testing.T) {
	if FnTy(Ty("nat"), Ty("nat")).Total {
		t.Error("-> must be the partial arrow")
	}
	if !TotalFnTy(Ty("nat"), Ty("nat")).Total {
		t.Error("+> must be the total arrow")
	}
}
