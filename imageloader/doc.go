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

// Package imageloader is used to specify the boot image that is to be loaded
// into the emulated console.
//
// Three image formats are supported. FIRM containers carry their own load
// addresses and entry points for both cores. ELF executables carry load
// addresses for each segment and a single entry point. Raw binaries are
// loaded at a base address, which is also the entry point.
//
// The entry point of ELF and raw images is given to one core. The other core
// is held.
//
// The simplest instance of the Loader type:
//
//	ld := imageloader.Loader{
//		Filename: "tests/arm9_pass.firm",
//	}
//
// It is preferred however that the NewLoader() function is used. The
// NewLoader() function will set the Format field according to the filename
// extension.
//
// An image can be read from inside an SD card image by setting the SDImage
// field. In that case the Filename field is the path to the image in the FAT
// filesystem of the card.
package imageloader
