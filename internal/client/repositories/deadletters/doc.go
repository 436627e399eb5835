// Package deadletters keeps queue items that ran out of delivery attempts,
// so they can be inspected and removed by hand.
package deadletters
