// Package utils holds small helpers shared by the storage, transfer and CLI layers:
// safe numeric conversions, progress math, file name sanitizing, id list files and content type checks.
package utils
