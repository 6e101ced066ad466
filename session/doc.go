// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

// Package session runs a single emulation from boot to a stop condition.
//
// A Session is created from a Config. Creating the session builds the
// console, loads and boots the image and applies any register overrides. No
// instruction is executed until Run() is called.
//
//	s, err := session.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	res, err := s.Run(context.Background())
//
// Sessions share nothing so any number of sessions can run concurrently.
package session
