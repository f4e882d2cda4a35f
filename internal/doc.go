// internal is internal packages for cfmon.
//
// Internal packages do not dependents on each other as far as possible.
// Dependencies to other package are implemented as a interface like monitor.Fetcher or monitor.Notifier.
//
// The region, cferr, and logger packages are exception cases for this rule.
// These packages are shared vocabularies of the other packages.
// The testutil package is also an exception, because it is only for tests.
package internal
