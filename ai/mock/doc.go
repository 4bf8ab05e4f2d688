// Package mock provides test doubles for the ai package interfaces.
//
// Mock constructors return concrete types so tests can inject behavior via
// function fields and make assertions through CallCount and Reset.
package mock
