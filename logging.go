// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mimpi

import "github.com/sirupsen/logrus"

// newDefaultLogger returns a text-formatted logrus.Logger writing to stderr,
// matching the ecosystem convention demonstrated across the retrieved corpus
// (see DESIGN.md's logging.go entry) rather than inventing a bespoke logger.
func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}
