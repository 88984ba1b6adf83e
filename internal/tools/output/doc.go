// Package output post-processes tool responses before they are returned
// to the MCP client. It masks Secret data, strips verbose or hidden
// fields, and truncates large result sets so responses stay within
// practical context limits.
package output
