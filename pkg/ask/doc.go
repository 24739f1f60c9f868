// Package ask evaluates triple patterns against a read context, producing
// lazy, restartable sequences of variable bindings.
//
// A pattern term starting with '?' is a variable; any other term matches
// literally. Repeating a variable inside one pattern constrains the matched
// terms to be equal.
package ask
