// Package analytics keeps analytics events until the remote accepts them.
package analytics
