package vm

import "github.com/jsjolen/remacs/object"

// bindArgs pushes the caller's arguments onto the frame's operand stack as
// described by the procedure's argument template.
//
// At most nonrest arguments are pushed positionally. Missing optional
// arguments are not padded; the compiled code is expected to know how many
// slots it received. When a rest slot exists and arguments remain past
// nonrest, they are pushed as one list. Without a template the arguments
// are pushed unchecked.
func bindArgs(fr *frame, tmpl object.ArgTemplate, args []object.Object) error {
	if !tmpl.IsSet() {
		for _, arg := range args {
			if err := fr.push(arg); err != nil {
				return err
			}
		}
		return nil
	}
	mandatory, nonrest, rest := tmpl.Mandatory(), tmpl.NonRest(), tmpl.HasRest()
	nargs := len(args)
	if nargs < mandatory || (!rest && nargs > nonrest) {
		return object.NewSignal(object.WrongNumberOfArguments,
			object.NewCons(object.Int(mandatory), object.Int(nonrest)),
			object.Int(nargs))
	}
	pushed := min(nonrest, nargs)
	for _, arg := range args[:pushed] {
		if err := fr.push(arg); err != nil {
			return err
		}
	}
	if rest && nargs > nonrest {
		return fr.push(object.NewList(args[nonrest:]...))
	}
	return nil
}
