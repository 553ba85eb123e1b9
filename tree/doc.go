// Package tree models a configuration as a tree of configs and fields and
// fills it from feeders.
//
// A Feeder is a named source (environment, flags, files, ...). Callers tell a
// feeder which of its entries apply to a node by attaching matches minted by
// the feeder:
//
//	env := ...                      // a Feeder embedding *tree.Registry
//	root := tree.NewConfig("app")
//	port := tree.NewField("port")
//	root.AddField(port)
//	env.Bind(port, "APP_PORT", "PORT")
//
//	cfg, err := tree.NewBuilder().WithFeeder(env).SetRoot(root).Build()
//
// Build walks the tree once per feeder, in registration order, depth-first and
// pre-order. Every node ends up with an ordered list of values: feeder order
// first, then match order within a feeder. Values are parsed on demand with
// Parse.
//
// Errors come in three kinds:
//   - *SetupError: the tree or builder was assembled wrong (duplicate feeder
//     name, duplicate binding, missing root, ...). Reported before population.
//   - *RunError: a feeder failed. Carries the failing node and its ancestors so
//     RunError.Help can point at it.
//   - *ParseError: a value could not be converted. Only returned by Parse.
package tree
